package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/config"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/pipeline"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/server"
	"github.com/ecemguvener/Hackeurope-Paris-2026/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing readers, profiles, documents, version generation and collapse.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides LISTEN_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	keys, err := config.NewKeyHasher()
	if err != nil {
		return fmt.Errorf("failed to create key hasher: %w", err)
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	svc := pipeline.NewService(pipeline.Options{
		Store:     store,
		Generator: a.generator,
		Model:     a.model,
		Assembly:  a.assemblyConfig(),
		Log:       a.log,
		OnProgress: func(e pipeline.ProgressEvent) {
			a.log.Debug("progress", "step", e.Step, "message", e.Message, "document_id", e.DocumentID)
		},
	})

	addr := a.cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv, err := server.New(server.Config{
		Addr:           addr,
		AllowedOrigins: a.cfg.AllowedOrigins,
		// Generation runs at most Concurrency calls at a time, each bounded by the timeout.
		WriteTimeout: time.Duration(a.cfg.GenerationTimeout)*4 + 30*time.Second,
	}, server.Deps{
		Service: svc,
		JWT:     server.NewJWTService(jwtConfig),
		Keys:    keys,
		Limiter: ratelimit.NewLimiter(ratelimit.LoadConfig(a.cfg.GenerateRatePerMinute)),
		Ping:    store.Ping,
		Log:     a.log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}

