package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/logger"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/observability"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/ranking"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/rewriting"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/styles"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/types"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type transformOptions struct {
	inputOptions
	Styles  []string
	OutPath string
}

var transformOpts transformOptions

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Generate reading versions of a text file",
	Long: "Generates the requested styles (all of them by default) for a text file and prints each version. " +
		"Without GEMINI_API_KEY every version comes from the local fallback transform.",
	RunE: runTransform,
}

func init() {
	addInputFlags(transformCmd, &transformOpts.inputOptions)
	transformCmd.Flags().StringSliceVar(&transformOpts.Styles, "styles", nil, "Styles to generate (comma-separated; default all)")
	transformCmd.Flags().StringVarP(&transformOpts.OutPath, "out", "o", "", "Write the candidates and decision trace as JSON to this file")
	rootCmd.AddCommand(transformCmd)
}

func runTransform(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	return transform(cmd.Context(), cmd.OutOrStdout(), a.generator, a.log, a.assemblyConfig(), transformOpts)
}

// transformOutput is the JSON written by --out.
type transformOutput struct {
	Candidates []rewriting.Candidate `json:"candidates"`
	Trace      types.DecisionTrace   `json:"decision"`
}

func transform(ctx context.Context, out io.Writer, gen rewriting.Generator, log *logger.Logger, cfg rewriting.Config, opts transformOptions) error {
	text, meta, profile, state, err := loadInputs(ctx, opts.inputOptions)
	if err != nil {
		return err
	}

	catalog := styles.Default()
	engine := ranking.NewEngine(catalog)
	assembler := rewriting.NewAssembler(engine, gen, nil, log, cfg)

	doc := &types.Document{
		ID:              uuid.New(),
		ExtractedText:   text,
		ContentHash:     meta.Hash,
		Transformations: map[styles.Key]string{},
	}
	res, err := assembler.Assemble(ctx, doc, profile, state, opts.Styles)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(out)
	printer.PrintDecision(catalog, res.Decision)
	printer.PrintCandidates(res.Candidates, res.Recommended)

	if opts.OutPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(transformOutput{Candidates: res.Candidates, Trace: res.Trace}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal candidates: %w", err)
	}
	if err := os.WriteFile(opts.OutPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
