package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/edh-dashboard-backend/internal/app"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "edh-dashboard",
	Short:         "Commander game tracking API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile == "" {
			return app.LoadDotenv()
		}
		return app.LoadDotenv(envFile)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the Postgres schema and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env when present)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := app.LoadConfig()
	log, err := app.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Error("Startup failed", "error", err)
		return err
	}
	defer a.Close()
	a.Start()

	if err := a.Run(ctx); err != nil {
		log.Error("Server stopped", "error", err)
		return err
	}
	log.Info("Server stopped")
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := app.LoadConfig()
	log, err := app.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := app.Migrate(cmd.Context(), log, cfg); err != nil {
		log.Error("Migration failed", "error", err)
		return err
	}
	log.Info("Migration complete")
	return nil
}

func main() {
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
