package main

import (
	"os"

	"medibook/cmd/bootstrap"
	"medibook/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "medibook",
		Short:        "Medical appointment booking API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New(cmd.Context())
			if err != nil {
				return err
			}
			return app.Run()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			bootstrap.SetupLogger(cfg.Log, cfg.App.Env)
			return bootstrap.Migrate(cmd.Context(), cfg, false, 0)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (postgres only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			bootstrap.SetupLogger(cfg.Log, cfg.App.Env)
			return bootstrap.Migrate(cmd.Context(), cfg, true, steps)
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}

func seedAdminCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap.SeedAdmin(cmd.Context(), email, password, name)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Admin email")
	cmd.Flags().StringVar(&password, "password", "", "Admin password")
	cmd.Flags().StringVar(&name, "name", "Administrator", "Admin full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
