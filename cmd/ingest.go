package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/cwire/infra/logger"
	"github.com/kilianp07/cwire/pkg/export"
)

var ingestOpts struct {
	input   string
	output  string
	format  string
	deletes []int32
	verify  bool
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Read station records and export the aggregated stations",
	RunE:  runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVarP(&ingestOpts.input, "input", "i", "", "input file, - for stdin (default from config)")
	f.StringVarP(&ingestOpts.output, "output", "o", "", "export file, - for stdout (default from config)")
	f.StringVarP(&ingestOpts.format, "format", "f", "", "export format: text, csv or json (default from config)")
	f.Int32SliceVar(&ingestOpts.deletes, "delete", nil, "station IDs to remove before export")
	f.BoolVar(&ingestOpts.verify, "verify", false, "check tree invariants before export")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.New("ingest")
	input := firstNonEmpty(ingestOpts.input, cfg.Input.Path)
	output := firstNonEmpty(ingestOpts.output, cfg.Export.Path)
	format := firstNonEmpty(ingestOpts.format, cfg.Export.Format)

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc, log)

	in, err := openInput(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	opts := []export.DecoderOption{export.WithDelimiter(cfg.Input.Delimiter)}
	if !cfg.Input.Header {
		opts = append(opts, export.WithoutHeader())
	}
	if _, err := svc.Ingest(ctx, in, opts...); err != nil {
		return fmt.Errorf("ingest %s: %w", input, err)
	}
	for _, id := range ingestOpts.deletes {
		if !svc.Delete(id) {
			log.Warnf("station %d not found", id)
		}
	}
	if ingestOpts.verify {
		if err := svc.Verify(); err != nil {
			return err
		}
		log.Infof("tree verified: %d stations", svc.Len())
	}
	if err := svc.Snapshot(); err != nil {
		log.Warnf("snapshot: %v", err)
	}
	return writeExport(svc, output, format)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
