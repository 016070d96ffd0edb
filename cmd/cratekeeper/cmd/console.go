package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solatis/cratekeeper/internal/console"
	"github.com/solatis/cratekeeper/internal/core/config"
	"github.com/solatis/cratekeeper/internal/core/db"
	"github.com/solatis/cratekeeper/internal/core/server"
	"github.com/solatis/cratekeeper/internal/repo"
	"github.com/solatis/cratekeeper/internal/usermgmt"
)

const Version = "0.1.0"

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the administration console HTTP service",
	RunE:  runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	consoleCmd.Flags().Int("port", 8080, "HTTP server port")
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		cfg.Port = port
	}

	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	var migrationID string
	checkQuery := `SELECT migration_id FROM migrations WHERE migration_id = '001_nodes.sql'`
	err = database.Get(&migrationID, database.Rebind(checkQuery))
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("migration 001_nodes not applied - run 'cratekeeper migrate' first")
		}
		return fmt.Errorf("failed to check migrations: %w", err)
	}

	store, err := repo.NewStore(database, logger)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	httpServer, err := server.NewHTTPServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	users := usermgmt.New(store,
		func() bool { return cfg.Enabled },
		console.NoTranslation,
		logger)
	httpServer.MountService(usermgmt.ServiceName, users.Endpoint())

	logger.Info("starting CrateKeeper console", "version", Version, "host", cfg.Host, "port", cfg.Port)
	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		logger.Info("shutting down gracefully")
		return httpServer.Shutdown(ctx)
	}
}
