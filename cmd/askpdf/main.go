// Package main provides the askpdf server entry point.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/askpdf/askpdf/config"
	"github.com/askpdf/askpdf/docstore"
	"github.com/askpdf/askpdf/jobs"
	"github.com/askpdf/askpdf/llm"
	"github.com/askpdf/askpdf/pdfx"
	"github.com/askpdf/askpdf/pipeline"
	"github.com/askpdf/askpdf/server"
	"github.com/askpdf/askpdf/storage"
)

var (
	provider string
	addr     string
	pdfPath  string
	dataDir  string
	watch    bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "askpdf",
		Short: "Ask questions about a PDF and stream the answer",
	}

	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "gemini", "generation provider (gemini, openai, anthropic)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	serveCmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides ASKPDF_ADDR)")
	serveCmd.Flags().StringVar(&pdfPath, "pdf", "", "PDF to load at startup (overrides ASKPDF_PDF)")
	serveCmd.Flags().StringVar(&dataDir, "data-dir", "", "directory for uploaded documents (overrides ASKPDF_DATA_DIR)")
	serveCmd.Flags().BoolVar(&watch, "watch", true, "reload the document when it changes on disk")
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve() error {
	settings, err := config.New(provider)
	if err != nil {
		return err
	}
	if addr != "" {
		settings.Server.Addr = addr
	}
	if pdfPath != "" {
		settings.Server.DocumentPath = pdfPath
	}
	if dataDir != "" {
		settings.Server.DataDir = dataDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := docstore.NewStore(pdfx.ExtractText)
	if _, err := os.Stat(settings.Server.DocumentPath); err == nil {
		if err := store.Load(settings.Server.DocumentPath); err != nil {
			log.Printf("[ERROR] failed to load %s: %v", settings.Server.DocumentPath, err)
		} else {
			log.Printf("[INFO] document loaded: %s (%d pages)", settings.Server.DocumentPath, store.Len())
		}
	} else {
		log.Printf("[INFO] no document at %s, waiting for upload", settings.Server.DocumentPath)
	}

	if watch && store.Len() > 0 {
		watcher, err := docstore.NewWatcher(store)
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer watcher.Stop()
		if err := watcher.Watch(ctx, settings.Server.DocumentPath); err != nil {
			return fmt.Errorf("failed to watch %s: %w", settings.Server.DocumentPath, err)
		}
	}

	// A missing credential leaves the provider nil; every query then
	// gets a clean error event instead of the process refusing to start.
	var llmProvider llm.Provider
	if settings.LLM.APIKey == "" {
		log.Printf("[WARN] %s not set, queries will fail until configured", llm.APIKeyEnv(settings.LLM.Provider))
	} else {
		llmProvider, err = llm.New(settings.LLM.Provider, settings.LLM.APIKey, settings.LLM.Model,
			settings.LLM.MaxTokens, settings.LLM.Temperature)
		if err != nil {
			return err
		}
		log.Printf("[INFO] using %s model %s", llmProvider.Name(), llmProvider.Model())
	}

	var history storage.HistoryStore
	if settings.Server.HistoryDB != "" {
		sqlite, err := storage.OpenSqliteHistory(settings.Server.HistoryDB)
		if err != nil {
			return err
		}
		defer sqlite.Close()
		history = sqlite
	} else {
		history = storage.NewInMemoryHistory()
	}

	runner := pipeline.NewRunner(store, llmProvider, history)
	registry := jobs.NewRegistry(runner.Run)
	defer registry.Close()

	srv := server.NewServer(registry, store, history, settings.Server.DataDir, settings.Server.Addr)
	return srv.Start(ctx)
}
