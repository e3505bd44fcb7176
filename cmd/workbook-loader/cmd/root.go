package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"workbook-loader/internal/config"
	"workbook-loader/internal/logging"
)

var (
	cfgFile string
	v       = viper.New()
	cfg     config.Config
	logger  = slog.Default()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "workbook-loader",
	Short: "Maps spreadsheet columns to collection fields and uploads the rows.",
	Long: `workbook-loader reads a collection workbook, maps its columns to the fields
of an entity, validates every cell and saves the rows to the backend in
resumable sessions.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command. An interrupt cancels the running command;
// an upload in progress is paused and can be resumed.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $HOME/.workbook-loader.yaml)")
	flags.String("api-url", "", "URL of the collection backend")
	flags.String("api-token", "", "Bearer token passed in REST API calls")
	flags.StringP("group", "g", "", "Group the saved resources belong to")
	flags.StringP("entity", "e", "", "Entity type, detected from the headers when empty")
	flags.String("schema", "", "YAML schema file replacing the embedded schema")
	flags.String("store-driver", "", "Session store: memory, file, sqlite or postgres")
	flags.String("store-dsn", "", "Session store DSN or directory")
	flags.String("log-level", "", "Log level")
	flags.String("log-format", "", "Log format: text or json")

	for key, name := range map[string]string{
		config.KeyAPIURL:      "api-url",
		config.KeyAPIToken:    "api-token",
		config.KeyGroup:       "group",
		config.KeyEntity:      "entity",
		config.KeySchemaFile:  "schema",
		config.KeyStoreDriver: "store-driver",
		config.KeyStoreDSN:    "store-dsn",
		config.KeyLogLevel:    "log-level",
		config.KeyLogFormat:   "log-format",
	} {
		cobra.CheckErr(v.BindPFlag(key, flags.Lookup(name)))
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error

	if cfg, err = config.Load(v, cfgFile); err != nil {
		return err
	}

	if logger, err = logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr()); err != nil {
		return err
	}

	slog.SetDefault(logger)

	return nil
}
