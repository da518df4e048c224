// Package cli implements the lightbox command line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tOgg1/lightbox/internal/config"
	"github.com/tOgg1/lightbox/internal/db"
	"github.com/tOgg1/lightbox/internal/logging"
)

// Execute runs the lightbox CLI.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

// app carries the loaded configuration across subcommands.
type app struct {
	cfgFile string
	cfg     *config.Config
}

func newRootCmd(version string) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "lightbox",
		Short:         "Terminal lightbox for chat conversation attachments",
		Long:          "lightbox stores chat conversations locally and pages through their attachments in a terminal carousel.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Config file path")

	cmd.AddCommand(
		newViewCmd(a),
		newConversationsCmd(a),
		newImportCmd(a),
		newSyncCmd(a),
		newVersionCmd(version),
	)

	return cmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lightbox version",
		Args:  cobra.NoArgs,
		// The root's PersistentPreRunE would touch config and data dirs;
		// version must work without either.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lightbox %s\n", version)
		},
	}
}

func (a *app) setup() error {
	var (
		cfg *config.Config
		err error
	)
	if a.cfgFile != "" {
		cfg, err = config.LoadFromFile(a.cfgFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	// Logs always go to a file: stderr belongs to the terminal UI.
	if err := logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		File:         cfg.Logging.File,
		EnableCaller: cfg.Logging.EnableCaller,
	}); err != nil {
		return err
	}

	a.cfg = cfg
	return nil
}

// openDB opens the configured database and brings the schema up to date.
func (a *app) openDB(ctx context.Context) (*db.DB, error) {
	database, err := db.Open(a.cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if _, err := database.MigrateUp(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}
