package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/cwire/app"
	"github.com/kilianp07/cwire/config"
	"github.com/kilianp07/cwire/infra/logger"
)

var (
	cfgPath string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "cwire",
	Short:         "Aggregate station loads from a power distribution feed",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return logger.SetLevel(cfg.Logging.Level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func newService() (*app.Service, error) {
	svc, err := app.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return svc, nil
}

func closeService(svc *app.Service, log logger.Logger) {
	if err := svc.Close(); err != nil {
		log.Errorf("service close: %v", err)
	}
}

// openInput opens path for reading, "-" meaning stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// writeExport exports the stations of svc to path, "-" meaning stdout.
func writeExport(svc *app.Service, path, format string) (err error) {
	if path == "" || path == "-" {
		return svc.Export(os.Stdout, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return svc.Export(f, format)
}
