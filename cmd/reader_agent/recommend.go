package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/fetch"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/ingestion"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/observability"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/ranking"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
	"github.com/spf13/cobra"
)

// inputOptions are the source and reader inputs shared by recommend and transform.
type inputOptions struct {
	TextPath    string
	URL         string
	HTML        bool
	ProfilePath string
	StatePath   string
}

type recommendOptions struct {
	inputOptions
	JSON bool
}

var recommendOpts recommendOptions

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Show which version a reader would be recommended for a text",
	Long:  "Scores every style for a text file against a reader profile and learning state, and prints the decision trace.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return recommend(cmd.Context(), cmd.OutOrStdout(), recommendOpts)
	},
}

func init() {
	addInputFlags(recommendCmd, &recommendOpts.inputOptions)
	recommendCmd.Flags().BoolVar(&recommendOpts.JSON, "json", false, "Print the decision trace as JSON")
	rootCmd.AddCommand(recommendCmd)
}

func addInputFlags(cmd *cobra.Command, opts *inputOptions) {
	cmd.Flags().StringVarP(&opts.TextPath, "text", "t", "", "Path to the source text")
	cmd.Flags().StringVarP(&opts.URL, "url", "u", "", "Fetch the source from a web page instead of a file")
	cmd.Flags().BoolVar(&opts.HTML, "html", false, "Treat the source file as HTML and extract its readable text")
	cmd.Flags().StringVarP(&opts.ProfilePath, "profile", "p", "", "Path to a reader profile JSON file")
	cmd.Flags().StringVarP(&opts.StatePath, "state", "s", "", "Path to a learning state JSON file")

	cmd.MarkFlagsMutuallyExclusive("text", "url")
	cmd.MarkFlagsOneRequired("text", "url")
}

var errNoSource = errors.New("either a text file or a URL is required")

// ingestSource fetches or reads the source and reduces it to clean text. A
// fetched page is treated as HTML unless the server says otherwise; a file is
// treated as HTML when --html is set or its extension is .html or .htm.
func ingestSource(ctx context.Context, opts inputOptions) (string, *ingestion.Metadata, error) {
	switch {
	case opts.URL != "":
		page, err := fetch.URL(ctx, opts.URL, nil)
		if err != nil {
			return "", nil, err
		}
		if page.IsHTML() {
			return ingestion.Ingest(page.Body, ingestion.SourceHTML)
		}
		return ingestion.Ingest(page.Body, ingestion.SourceText)
	case opts.TextPath != "" && opts.HTML:
		raw, err := os.ReadFile(opts.TextPath)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read text file: %w", err)
		}
		return ingestion.Ingest(string(raw), ingestion.SourceHTML)
	case opts.TextPath != "":
		return ingestion.IngestFromFile(opts.TextPath)
	default:
		return "", nil, errNoSource
	}
}

// loadInputs reads the source text, profile and state. Missing profile or
// state files mean a new reader.
func loadInputs(ctx context.Context, opts inputOptions) (string, *ingestion.Metadata, *types.ReaderProfile, *types.LearningState, error) {
	text, meta, err := ingestSource(ctx, opts)
	if err != nil {
		return "", nil, nil, nil, err
	}

	profile := &types.ReaderProfile{}
	if opts.ProfilePath != "" {
		if err := readJSON(opts.ProfilePath, profile); err != nil {
			return "", nil, nil, nil, fmt.Errorf("failed to load profile: %w", err)
		}
	}
	state := types.NewLearningState()
	if opts.StatePath != "" {
		if err := readJSON(opts.StatePath, &state); err != nil {
			return "", nil, nil, nil, fmt.Errorf("failed to load learning state: %w", err)
		}
	}
	return text, meta, profile, &state, nil
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func recommend(ctx context.Context, out io.Writer, opts recommendOptions) error {
	text, _, profile, state, err := loadInputs(ctx, opts.inputOptions)
	if err != nil {
		return err
	}

	catalog := styles.Default()
	engine := ranking.NewEngine(catalog)
	decision := engine.Decide(text, profile, state)

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(engine.Trace(decision))
	}
	observability.NewPrinter(out).PrintDecision(catalog, decision)
	_, err = fmt.Fprintln(out, engine.Explain(decision))
	return err
}
