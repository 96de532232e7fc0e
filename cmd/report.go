package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/cwire/infra/logger"
)

var reportOpts struct {
	input string
	top   int
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize an exported station file",
	RunE:  runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVarP(&reportOpts.input, "input", "i", "-", "exported station file, - for stdin")
	f.IntVarP(&reportOpts.top, "top", "n", 10, "number of stations listed at each end")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logger.New("report")
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc, log)

	in, err := openInput(reportOpts.input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	if _, err := svc.Ingest(cmd.Context(), in); err != nil {
		return fmt.Errorf("read export %s: %w", reportOpts.input, err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(svc.Report(reportOpts.top))
}
