// Package styles defines the closed catalog of rewrite styles and the normalizer
// that maps free-form style names onto catalog keys.
package styles

import "fmt"

// Key identifies one rewrite style.
type Key string

// Catalog keys, in catalog order.
const (
	Simplified    Key = "simplified"
	BulletPoints  Key = "bullet_points"
	PlainLanguage Key = "plain_language"
	Restructured  Key = "restructured"
)

// Style is the display metadata for a catalog key.
type Style struct {
	Key         Key    `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Catalog is an immutable, ordered set of styles. Order is the tie-break order
// for scoring and the 1-based ordinal ("version number") used by clients.
type Catalog struct {
	styles  []Style
	index   map[Key]int
	aliases map[string]Key
}

var defaultStyles = []Style{
	{Key: Simplified, Title: "Simplified", Description: "Shorter sentences, clearer structure"},
	{Key: BulletPoints, Title: "Bullet Points", Description: "Key information as scannable bullets"},
	{Key: PlainLanguage, Title: "Plain Language", Description: "Jargon replaced with everyday words"},
	{Key: Restructured, Title: "Restructured", Description: "Reorganized for easier reading flow"},
}

var defaultAliases = map[string]Key{
	"bullet":     BulletPoints,
	"simple":     Simplified,
	"chunked":    Restructured,
	"structured": Restructured,
	"plain":      PlainLanguage,
}

// Default returns the four-style catalog.
func Default() *Catalog {
	c, err := NewCatalog(defaultStyles, defaultAliases)
	if err != nil {
		panic(fmt.Sprintf("default style catalog is invalid: %v", err))
	}
	return c
}

// NewCatalog builds a catalog from an ordered style list and an alias table.
// Keys must be unique and aliases must point at catalog keys.
func NewCatalog(list []Style, aliases map[string]Key) (*Catalog, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("catalog requires at least one style")
	}

	c := &Catalog{
		styles:  make([]Style, len(list)),
		index:   make(map[Key]int, len(list)),
		aliases: make(map[string]Key, len(aliases)),
	}
	copy(c.styles, list)

	for i, s := range c.styles {
		if s.Key == "" {
			return nil, fmt.Errorf("style at position %d has an empty key", i)
		}
		if _, dup := c.index[s.Key]; dup {
			return nil, fmt.Errorf("duplicate style key %q", s.Key)
		}
		c.index[s.Key] = i
	}

	for alias, target := range aliases {
		if _, ok := c.index[target]; !ok {
			return nil, fmt.Errorf("alias %q points at unknown style %q", alias, target)
		}
		c.aliases[slugify(alias)] = target
	}

	return c, nil
}

// Keys returns the catalog keys in order. The slice is a copy.
func (c *Catalog) Keys() []Key {
	keys := make([]Key, len(c.styles))
	for i, s := range c.styles {
		keys[i] = s.Key
	}
	return keys
}

// Styles returns the catalog entries in order. The slice is a copy.
func (c *Catalog) Styles() []Style {
	out := make([]Style, len(c.styles))
	copy(out, c.styles)
	return out
}

// Len returns the number of styles.
func (c *Catalog) Len() int {
	return len(c.styles)
}

// Contains reports whether key is a catalog key.
func (c *Catalog) Contains(key Key) bool {
	_, ok := c.index[key]
	return ok
}

// Lookup returns the style for key.
func (c *Catalog) Lookup(key Key) (Style, bool) {
	i, ok := c.index[key]
	if !ok {
		return Style{}, false
	}
	return c.styles[i], true
}

// First returns the first style in catalog order.
func (c *Catalog) First() Key {
	return c.styles[0].Key
}

// Title returns the display title for key, or a humanized form of the key when
// it is not in the catalog.
func (c *Catalog) Title(key Key) string {
	if s, ok := c.Lookup(key); ok {
		return s.Title
	}
	return humanize(string(key))
}

// Ordinal returns the 1-based position of key, or 0 when key is unknown.
func (c *Catalog) Ordinal(key Key) int {
	i, ok := c.index[key]
	if !ok {
		return 0
	}
	return i + 1
}

// ByOrdinal returns the key at 1-based position n.
func (c *Catalog) ByOrdinal(n int) (Key, bool) {
	if n < 1 || n > len(c.styles) {
		return "", false
	}
	return c.styles[n-1].Key, true
}
