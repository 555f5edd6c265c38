package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jsamuelsen/quotebook/internal/adapters/sinks"
	"github.com/jsamuelsen/quotebook/internal/adapters/storage"
	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
	"github.com/jsamuelsen/quotebook/internal/platform/paths"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

// env is the state shared by every command of one invocation.
type env struct {
	configDir string
	dataDir   string
	jsonOut   bool

	v      *viper.Viper
	logger *slog.Logger

	backend *storage.Backend
	store   *app.Store

	clipboard ports.Clipboard
	source    ports.DocumentSource
	now       func() time.Time
}

func newEnv() *env {
	return &env{
		clipboard: sinks.NewClipboard(),
		now:       time.Now,
	}
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "quotectl",
		Short:         "Keep a collection of quotes",
		Long:          "quotectl adds, searches, imports, exports and merges a local collection of quotes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}

			return e.configure(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return e.close()
		},
	}

	root.PersistentFlags().StringVar(&e.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/quotebook)")
	root.PersistentFlags().StringVar(&e.dataDir, "data-dir", "", "data directory (default: $XDG_DATA_HOME/quotebook)")
	root.PersistentFlags().BoolVar(&e.jsonOut, "json", false, "output as JSON")

	root.AddCommand(
		newAddCmd(e),
		newListCmd(e),
		newEditCmd(e),
		newRmCmd(e),
		newFavCmd(e),
		newCopyCmd(e),
		newStatsCmd(e),
		newImportCmd(e),
		newFetchCmd(e),
		newExportCmd(e),
		newMergeCmd(e),
		newViewCmd(e),
		newVersionCmd(),
	)

	return root
}

// configure loads config.yaml and builds the logger.
func (e *env) configure(cmd *cobra.Command) error {
	dir, err := paths.ResolveConfigDir(e.configDir)
	if err != nil {
		return err
	}

	v, err := loadConfig(dir)
	if err != nil {
		return err
	}

	e.v = v
	e.logger = logging.NewWithWriter(&logging.Config{
		Level:   v.GetString(cfgKeyLogLevel),
		Format:  v.GetString(cfgKeyLogFormat),
		Service: "quotectl",
		Version: Version,
	}, cmd.ErrOrStderr())

	return nil
}
