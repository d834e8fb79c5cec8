package agent

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"cpubars/internal/collector"
	"cpubars/internal/config"
	"cpubars/internal/render"
	"cpubars/internal/stream"
	"cpubars/internal/system"
)

const defaultReportTimeout = 3 * time.Second

// Agent runs one measure-and-render cycle.
type Agent struct {
	cfg      config.Config
	logger   *slog.Logger
	source   system.StatSource
	sampler  *collector.Sampler
	renderer *render.Renderer
	sink     stream.Sink
	stdout   io.Writer
}

type Option func(*Agent)

func WithStatSource(src system.StatSource) Option {
	return func(a *Agent) { a.source = src }
}

func WithSink(sink stream.Sink) Option {
	return func(a *Agent) { a.sink = sink }
}

func WithStdout(w io.Writer) Option {
	return func(a *Agent) { a.stdout = w }
}

func New(cfg config.Config, logger *slog.Logger, opts ...Option) (*Agent, error) {
	palette, err := render.NewPalette(cfg.Palette)
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}

	a := &Agent{
		cfg:      cfg,
		logger:   logger,
		renderer: render.New(palette, cfg.ColorMode, cfg.Thresholds()),
		stdout:   os.Stdout,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.cfg.ReportTimeout <= 0 {
		a.cfg.ReportTimeout = defaultReportTimeout
	}
	if a.source == nil {
		a.source = system.NewFileStatSource(cfg.StatPath)
	}
	if a.sink == nil {
		tlsCfg, err := cfg.TLSConfig()
		if err != nil {
			return nil, fmt.Errorf("tls config: %w", err)
		}
		sink, err := stream.NewSinkFromConfig(cfg, tlsCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("report sink: %w", err)
		}
		a.sink = sink
	}
	a.sampler = collector.NewSampler(logger, a.source, cfg.Delay)
	return a, nil
}

// BuildLogger writes to w, which should not be the stream carrying the bars.
func BuildLogger(cfg config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	hOpts := &slog.HandlerOptions{Level: level}
	if cfg.LogJSON {
		return slog.New(slog.NewJSONHandler(w, hOpts))
	}
	return slog.New(slog.NewTextHandler(w, hOpts))
}
