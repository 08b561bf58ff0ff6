package cli

import (
	"fmt"
	"io"
	"strconv"

	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/shared/logger"
	"galaxy-server/internal/wire"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	success = color.New(color.FgGreen).Sprint("✓")
	warning = color.New(color.FgYellow).Sprint("!")
)

// loadConfig reads the environment and routes logs to stderr. Logs below
// warn are hidden unless --verbose is set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.Init(); err != nil {
		return nil, err
	}
	cfg := config.GlobalConfig

	logging := cfg.Logging
	if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
		logging.Level = "warn"
	}
	logger.Setup(logging, cmd.ErrOrStderr())

	return cfg, nil
}

// openApp connects to the configured database, migrating the schema first
func openApp(cmd *cobra.Command) (*wire.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	app, err := wire.Open(cfg, true)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", arg)
	}
	return id, nil
}

func printf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}
