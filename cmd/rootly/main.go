package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rootly-app/rootly/internal/app"
	"github.com/rootly-app/rootly/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// main runs the CLI entrypoint and exits on unrecoverable command errors.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if errRun := newRootCommand().ExecuteContext(ctx); errRun != nil {
		log.WithError(errRun).Error("command failed")
		stop()
		os.Exit(1)
	}
}

// newRootCommand wires the subcommands. The root
// command itself serves, so a bare invocation starts the web server.
func newRootCommand() *cobra.Command {
	var cfgPath string

	loadAppConfig := func() (config.AppConfig, error) {
		appCfg, err := config.LoadFromEnv()
		if err != nil {
			return config.AppConfig{}, err
		}
		if strings.TrimSpace(cfgPath) != "" {
			appCfg.ConfigPath = config.ResolveConfigPath(cfgPath)
		}
		return appCfg, nil
	}

	serve := newServeCommand(loadAppConfig)
	root := &cobra.Command{
		Use:           "rootly",
		Short:         "Rootly plant care web application",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (or env CONFIG_PATH)")
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve)
	root.AddCommand(newMigrateCommand(loadAppConfig))
	root.AddCommand(newSeedCommand(loadAppConfig))
	root.AddCommand(newImportCommand(loadAppConfig))
	root.AddCommand(newInitCommand(loadAppConfig))
	return root
}

type appConfigLoader func() (config.AppConfig, error)

func newServeCommand(load appConfigLoader) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port != 0 {
				if errValidate := validatePort(port); errValidate != nil {
					return errValidate
				}
			}
			appCfg, err := load()
			if err != nil {
				return err
			}
			return app.RunServer(cmd.Context(), appCfg, port)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "server port (overrides config and PORT)")
	return cmd
}

func newMigrateCommand(load appConfigLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appCfg, err := load()
			if err != nil {
				return err
			}
			return app.Migrate(cmd.Context(), appCfg)
		},
	}
}

func newSeedCommand(load appConfigLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load regions, the admin account and sample plants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appCfg, err := load()
			if err != nil {
				return err
			}
			report, err := app.SeedDatabase(cmd.Context(), appCfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", report)
			return nil
		},
	}
}

func newImportCommand(load appConfigLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file-or-url]",
		Short: "Import catalogue plants from a JSON file or URL",
		Long:  "Import catalogue plants from a JSON file or URL. Without an argument the configured catalog source is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := load()
			if err != nil {
				return err
			}
			source := ""
			if len(args) == 1 {
				source = args[0]
			}
			report, err := app.ImportCatalog(cmd.Context(), appCfg, source)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", report)
			return nil
		},
	}
}

func newInitCommand(load appConfigLoader) *cobra.Command {
	var (
		opts      app.DatabaseOptions
		port      int
		checkConn bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write an initial config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if errValidate := validatePort(port); errValidate != nil {
				return errValidate
			}
			appCfg, err := load()
			if err != nil {
				return err
			}
			if errValidate := app.ValidateDatabaseOptions(&opts); errValidate != nil {
				return errValidate
			}
			dsn, err := app.BuildDSN(opts)
			if err != nil {
				return err
			}
			if checkConn {
				if errCheck := app.CheckDatabaseConnection(dsn); errCheck != nil {
					return errCheck
				}
			}
			if errWrite := app.WriteConfigFile(appCfg.ConfigPath, dsn, port); errWrite != nil {
				return errWrite
			}
			log.Infof("config written to %s (%s)", appCfg.ConfigPath, app.DescribeDSN(dsn))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.Type, "db-type", "sqlite", "database type: sqlite or postgres")
	flags.StringVar(&opts.Path, "db-path", "", "SQLite database file")
	flags.StringVar(&opts.Host, "db-host", "", "postgres host")
	flags.IntVar(&opts.Port, "db-port", 5432, "postgres port")
	flags.StringVar(&opts.User, "db-user", "", "postgres user")
	flags.StringVar(&opts.Password, "db-password", "", "postgres password")
	flags.StringVar(&opts.Name, "db-name", "", "postgres database name")
	flags.StringVar(&opts.SSLMode, "db-sslmode", "disable", "postgres sslmode")
	flags.IntVar(&port, "port", config.DefaultPort, "server port written to the config file")
	flags.BoolVar(&checkConn, "check", false, "verify the database connection before writing")
	return cmd
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}
