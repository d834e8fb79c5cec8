package agent

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"cpubars/internal/collector"
	"cpubars/internal/render"
	"cpubars/internal/stream"
)

// Run samples, renders the bar line to stdout and, when a sink is
// configured, reports the result. The report channel is dialed while the
// sampler sleeps between its two readings.
func (a *Agent) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Debug("starting cpubars", "stat_path", a.cfg.StatPath, "delay", a.cfg.Delay, "color", a.cfg.ColorMode, "report", a.cfg.ReportMode)

	m, sinkReady, err := a.measure(ctx)
	if err != nil {
		return err
	}

	out := a.renderer.Render(m.Utilization)
	if _, err := fmt.Fprintln(a.stdout, out.String()); err != nil {
		return fmt.Errorf("write bars: %w", err)
	}

	if sinkReady {
		a.report(ctx, m, out)
	}
	return nil
}

func (a *Agent) measure(ctx context.Context) (collector.Measurement, bool, error) {
	var (
		m         collector.Measurement
		sinkReady bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		m, err = a.sampler.Measure(gctx)
		return err
	})
	if a.sink != nil {
		g.Go(func() error {
			connectCtx, cancel := context.WithTimeout(gctx, a.cfg.ReportTimeout)
			defer cancel()
			if err := a.sink.Connect(connectCtx); err != nil {
				a.logger.Warn("report sink unavailable, skipping report", "mode", a.cfg.ReportMode, "error", err)
				return nil
			}
			sinkReady = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.closeSink()
		return collector.Measurement{}, false, err
	}
	if !sinkReady {
		a.closeSink()
	}
	return m, sinkReady, nil
}

func (a *Agent) report(ctx context.Context, m collector.Measurement, out render.Output) {
	defer a.closeSink()

	sendCtx, cancel := context.WithTimeout(ctx, a.cfg.ReportTimeout)
	defer cancel()

	r := stream.NewCPUUtilizationReport(a.cfg.NodeID, a.cfg.Delay, m, out)
	if err := a.sink.SendReport(sendCtx, r); err != nil {
		a.logger.Warn("report send failed", "mode", a.cfg.ReportMode, "error", err)
		return
	}
	a.logger.Info("report sent", "mode", a.cfg.ReportMode, "cores", len(r.Cores), "load", r.Load)
}

func (a *Agent) closeSink() {
	if a.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ReportTimeout)
	defer cancel()
	if err := a.sink.Close(ctx); err != nil {
		a.logger.Debug("report sink close failed", "error", err)
	}
}
