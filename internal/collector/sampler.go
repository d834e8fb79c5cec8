package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cpubars/internal/procstat"
	"cpubars/internal/system"
	"cpubars/internal/utilization"
)

const DefaultDelay = 100 * time.Millisecond

// Measurement is the outcome of one two-sample cycle.
type Measurement struct {
	Earlier     procstat.Sample
	Later       procstat.Sample
	Utilization utilization.Sample
	StartedAt   time.Time
	Elapsed     time.Duration
}

// Sampler reads the stat source twice, delay apart, and computes per-core
// utilization between the two readings. It performs no retries.
type Sampler struct {
	logger *slog.Logger
	source system.StatSource
	delay  time.Duration
	now    func() time.Time
}

func NewSampler(logger *slog.Logger, source system.StatSource, delay time.Duration) *Sampler {
	if delay < 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sampler{
		logger: logger,
		source: source,
		delay:  delay,
		now:    time.Now,
	}
}

func (s *Sampler) Measure(ctx context.Context) (Measurement, error) {
	started := s.now()

	earlier, err := s.sample(ctx)
	if err != nil {
		return Measurement{}, fmt.Errorf("first sample: %w", err)
	}

	if err := sleepWithContext(ctx, s.delay); err != nil {
		return Measurement{}, err
	}

	later, err := s.sample(ctx)
	if err != nil {
		return Measurement{}, fmt.Errorf("second sample: %w", err)
	}

	u, err := utilization.Compute(earlier, later)
	if err != nil {
		return Measurement{}, err
	}

	m := Measurement{
		Earlier:     earlier,
		Later:       later,
		Utilization: u,
		StartedAt:   started,
		Elapsed:     s.now().Sub(started),
	}
	sum := utilization.Summarize(u)
	if sum.Anomalies > 0 {
		s.logger.Warn("cores reported no usable tick delta", "cores", sum.Cores, "anomalies", sum.Anomalies, "delay", s.delay)
	}
	s.logger.Debug("cpu utilization measured", "cores", sum.Cores, "load", sum.Load, "max", sum.Max, "ratios", u.Ratios(), "elapsed", m.Elapsed)
	return m, nil
}

func (s *Sampler) sample(ctx context.Context) (procstat.Sample, error) {
	raw, err := s.source.ReadStat(ctx)
	if err != nil {
		return procstat.Sample{}, err
	}
	return procstat.Parse(raw)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
