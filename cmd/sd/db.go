package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zulandar/stagedocs/internal/config"
	"github.com/zulandar/stagedocs/internal/db"
	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/docstore/mongostore"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBMigrateCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the stagedocs database and its tables",
		Long:  "Creates the MySQL database if missing, then migrates every table. For sqlite and mongo this is the same as migrate.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "stagedocs.yaml", "path to stagedocs config file")
	return cmd
}

func newDBMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate tables (SQL) or ensure indexes (mongo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runDBMigrate(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "stagedocs.yaml", "path to stagedocs config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %s config from %s\n", cfg.Database.Driver, configPath)

	if cfg.Database.Driver == config.DriverMySQL {
		adminDB, err := db.ConnectAdmin(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close(adminDB)
		fmt.Fprintf(out, "Connected to MySQL at %s:%d\n", cfg.Database.Host, cfg.Database.Port)

		if err := db.CreateDatabase(adminDB, cfg.Database.Name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Database %s ready\n", cfg.Database.Name)
	}

	return runDBMigrate(cmd, cfg)
}

func runDBMigrate(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()

	if cfg.Database.Driver == config.DriverMongo {
		ctx := context.Background()
		s, err := mongostore.Connect(ctx, cfg.Database.URI, cfg.Database.Name, docstore.Budget{MaxTime: cfg.Query.MaxTime})
		if err != nil {
			return fmt.Errorf("connect to mongo %s: %w", cfg.Database.Name, err)
		}
		defer s.Close()
		n, err := s.EnsureIndexes(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Ensured %d indexes\n", n)
		return nil
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.Database.Name, err)
	}
	defer db.Close(gormDB)

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))
	return nil
}
