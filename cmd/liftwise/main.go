// Package main is the entry point for the Liftwise CLI.
// Liftwise is a conversational fitness assistant that answers questions
// about your Hevy training data and edits routines through chat.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkallio/liftwise/internal/assistant"
	"github.com/mkallio/liftwise/internal/config"
	"github.com/mkallio/liftwise/internal/data"
	"github.com/mkallio/liftwise/internal/hevy"
	"github.com/mkallio/liftwise/internal/llm"
	"github.com/mkallio/liftwise/internal/logging"
	"github.com/mkallio/liftwise/internal/metrics"
	"github.com/mkallio/liftwise/internal/search"
	"github.com/mkallio/liftwise/internal/server"
)

var (
	version = "0.1.0"
	cfgPath string
	verbose bool
	log     *logging.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "liftwise",
		Short: "Liftwise - conversational assistant for your Hevy training data",
		Long: `Liftwise connects your Hevy workout log to an LLM so you can ask
questions about your training, analyze progress, and swap exercises in
your routines through plain conversation.

Start the API server:   liftwise serve
Ask a one-shot question: liftwise ask "how did my last workout go?"
Configuration:           liftwise config show`,
		PersistentPreRunE: initLogging,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default ~/.liftwise/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Liftwise v%s\n", version)
		},
	})

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(templatesCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogging(cmd *cobra.Command, args []string) error {
	loadEnvFile()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logCfg := &logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		Console: true,
		File:    cfg.Logging.File,
	}
	if verbose {
		logCfg.Level = logging.LevelDebug
	}

	log = logging.New(logCfg)
	logging.SetGlobal(log)
	return nil
}

// loadEnvFile loads API keys from ~/.liftwise/.env into the process
// environment so os.Getenv picks them up everywhere.
func loadEnvFile() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}

	raw, err := os.ReadFile(filepath.Join(home, ".liftwise", ".env"))
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, "="); idx > 0 {
			key := strings.TrimSpace(line[:idx])
			value := strings.Trim(strings.TrimSpace(line[idx+1:]), `"'`)
			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	}
}

func loadConfig() (*config.Config, error) {
	if cfgPath != "" {
		return config.LoadFromPath(cfgPath)
	}
	return config.Load()
}

// buildAssistant wires the Hevy client, LLM provider, template cache and
// orchestrator from configuration.
func buildAssistant(cfg *config.Config) (*assistant.Orchestrator, *hevy.Client, *assistant.TemplateCache, error) {
	if cfg.Hevy.APIKey == "" {
		return nil, nil, nil, fmt.Errorf("Hevy API key not configured (set hevy.api_key or LIFTWISE_HEVY_API_KEY)")
	}

	api := hevy.NewClient(cfg.Hevy, hevy.WithObserver(metrics.ObserveHevy))

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	if !provider.Available() {
		log.Warn("LLM provider %q is not fully configured; chat turns will fail", provider.Name())
	}

	cache := assistant.NewTemplateCache(api)

	opts := []assistant.Option{}
	if cfg.Search.Enabled && cfg.Search.SerpAPIKey != "" {
		opts = append(opts, assistant.WithSearcher(search.NewClient(cfg.Search.SerpAPIKey)))
	}

	return assistant.New(provider, api, cache, opts...), api, cache, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			orch, api, _, err := buildAssistant(cfg)
			if err != nil {
				return err
			}

			var store *data.Store
			if cfg.Data.PersistHistory {
				store, err = data.NewDB(cfg.GetDataDir())
				if err != nil {
					return fmt.Errorf("open transcript store: %w", err)
				}
				defer store.Close()
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg.Server, orch, api, store)
			log.Info("Liftwise v%s listening on %s", version, cfg.ServerAddr())
			return srv.ListenAndServe(ctx)
		},
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a one-shot question about your training",
		Long: `Ask a question and get a response based on your Hevy data.

Examples:
  liftwise ask "how did my last workout go?"
  liftwise ask "what routines are in my current program?"
  liftwise ask "how is my bench press progressing?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			orch, _, _, err := buildAssistant(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			result := orch.HandleTurn(ctx, "cli", question)
			fmt.Println(result.Response)
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage stored conversation transcripts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No stored sessions.")
				return nil
			}
			for _, s := range sessions {
				fmt.Printf("%s  %d turns  updated %s\n", s.ID, s.TurnCount, s.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export [session] [file]",
		Short: "Export a session transcript to a JSON file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			turns, err := store.GetTranscript(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			export := make([]assistant.ConversationTurn, len(turns))
			for i, t := range turns {
				export[i] = assistant.ConversationTurn{Role: t.Role, Content: t.Content}
			}
			raw, err := json.MarshalIndent(export, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], raw, 0o644); err != nil {
				return err
			}
			fmt.Printf("Exported %d turns to %s\n", len(export), args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import [session] [file]",
		Short: "Import a JSON transcript into a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			var imported []assistant.ConversationTurn
			if err := json.Unmarshal(raw, &imported); err != nil {
				return fmt.Errorf("parse transcript: %w", err)
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			turns := make([]data.Turn, len(imported))
			for i, t := range imported {
				turns[i] = data.Turn{Role: t.Role, Content: t.Content}
			}
			if err := store.ReplaceTranscript(cmd.Context(), args[0], turns); err != nil {
				return err
			}
			fmt.Printf("Imported %d turns into session %s\n", len(turns), args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear [session]",
		Short: "Delete a stored session transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted session %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func openStore() (*data.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return data.NewDB(cfg.GetDataDir())
}

func templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect the exercise template catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Fetch the full template catalog from Hevy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, _, cache, err := buildAssistant(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			if err := cache.Reload(ctx); err != nil {
				return fmt.Errorf("refresh templates: %w", err)
			}
			fmt.Printf("Loaded %d exercise templates\n", cache.Len())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list [muscle-group]",
		Short: "List exercise templates, optionally filtered by muscle group",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, _, cache, err := buildAssistant(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			var filter string
			if len(args) == 1 {
				filter = strings.ToLower(args[0])
			}

			n := 0
			for _, t := range cache.Templates(ctx) {
				if filter != "" && strings.ToLower(t.PrimaryMuscleGroup) != filter {
					continue
				}
				fmt.Printf("%-40s %s\n", t.Title, t.PrimaryMuscleGroup)
				n++
			}
			if n == 0 {
				fmt.Println("No templates matched.")
			}
			return nil
		},
	})

	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Println("Liftwise Configuration:")
			fmt.Println("───────────────────────")
			fmt.Printf("Hevy API Key:    %s\n", maskKey(cfg.Hevy.APIKey))
			fmt.Printf("LLM Provider:    %s\n", cfg.LLM.DefaultProvider)
			fmt.Printf("Server Address:  %s\n", cfg.ServerAddr())
			fmt.Printf("Data Directory:  %s\n", cfg.GetDataDir())
			fmt.Printf("Persist History: %t\n", cfg.Data.PersistHistory)
			fmt.Printf("Web Search:      %t\n", cfg.Search.Enabled)
			fmt.Printf("Log Level:       %s\n", cfg.Logging.Level)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Println(cfg.GetConfigPath())
			return nil
		},
	})

	return cmd
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
