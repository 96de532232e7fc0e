package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/cwire/infra/logger"
	"github.com/kilianp07/cwire/infra/metrics"
	"github.com/kilianp07/cwire/infra/mqtt"
)

var subscribeOpts struct {
	output   string
	interval time.Duration
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Aggregate station records received over MQTT until interrupted",
	RunE:  runSubscribe,
}

func init() {
	f := subscribeCmd.Flags()
	f.StringVarP(&subscribeOpts.output, "output", "o", "", "export file written on shutdown, - for stdout (default from config)")
	f.DurationVar(&subscribeOpts.interval, "snapshot-interval", time.Minute, "interval between metric snapshots, 0 to disable")
	rootCmd.AddCommand(subscribeCmd)
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.New("subscribe")
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc, log)

	if addr := cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				log.Errorf("prom server: %v", err)
			}
		}()
	}

	sub, err := mqtt.NewSubscriber(cfg.MQTT, svc)
	if err != nil {
		return fmt.Errorf("mqtt subscriber: %w", err)
	}
	log.Infof("subscribed to %s on %s", cfg.MQTT.Topic, cfg.MQTT.Broker)

	var tick <-chan time.Time
	if subscribeOpts.interval > 0 {
		t := time.NewTicker(subscribeOpts.interval)
		defer t.Stop()
		tick = t.C
	}
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-tick:
			if err := svc.Snapshot(); err != nil {
				log.Warnf("snapshot: %v", err)
			}
		}
	}
	sub.Close()

	if err := svc.Snapshot(); err != nil {
		log.Warnf("snapshot: %v", err)
	}
	return writeExport(svc, firstNonEmpty(subscribeOpts.output, cfg.Export.Path), cfg.Export.Format)
}
