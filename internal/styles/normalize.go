package styles

import (
	"strings"
	"unicode"
)

// Normalize maps a free-form style name onto a catalog key. It accepts keys,
// slug variants ("Bullet-Points"), display titles and legacy aliases
// ("bullet", "chunked"). It reports false when nothing matches.
func (c *Catalog) Normalize(raw string) (Key, bool) {
	if raw == "" {
		return "", false
	}

	// Exact key
	if c.Contains(Key(raw)) {
		return Key(raw), true
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	slug := slugify(trimmed)
	if c.Contains(Key(slug)) {
		return Key(slug), true
	}

	for _, s := range c.styles {
		if strings.EqualFold(s.Title, trimmed) {
			return s.Key, true
		}
	}

	if target, ok := c.aliases[slug]; ok {
		return target, true
	}

	return "", false
}

// MustNormalize is Normalize for callers that want the empty key on no match.
func (c *Catalog) MustNormalize(raw string) Key {
	key, _ := c.Normalize(raw)
	return key
}

// NormalizeAll normalizes a list of raw names, dropping unknown names and
// duplicates. The result is in catalog order.
func (c *Catalog) NormalizeAll(raw []string) []Key {
	seen := make(map[Key]bool, len(raw))
	for _, r := range raw {
		if key, ok := c.Normalize(r); ok {
			seen[key] = true
		}
	}

	out := make([]Key, 0, len(seen))
	for _, s := range c.styles {
		if seen[s.Key] {
			out = append(out, s.Key)
		}
	}
	return out
}

// slugify lowercases s and collapses every run of non-alphanumeric runes into
// a single underscore, trimming underscores at both ends.
func slugify(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			pendingSep = false
			sb.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return sb.String()
}

// humanize turns "bullet_points" into "Bullet points".
func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
