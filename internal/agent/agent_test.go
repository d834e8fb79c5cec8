package agent

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpubars/internal/config"
	"cpubars/internal/model"
	"cpubars/internal/procstat"
	"cpubars/internal/render"
	"cpubars/internal/system"
)

const (
	statBefore = "cpu  0 0 0 0 0 0 0 0 0 0\n" +
		"cpu0 100 0 100 800 0 0 0 0 0 0\n" +
		"cpu1 100 0 100 800 0 0 0 0 0 0\n"
	statAfter = "cpu  0 0 0 0 0 0 0 0 0 0\n" +
		"cpu0 150 0 150 800 0 0 0 0 0 0\n" +
		"cpu1 100 0 100 900 0 0 0 0 0 0\n"
)

type fakeSink struct {
	mu         sync.Mutex
	connectErr error
	sendErr    error
	reports    []model.CPUUtilizationReport
	closed     int
}

func (f *fakeSink) Connect(context.Context) error {
	return f.connectErr
}

func (f *fakeSink) SendReport(_ context.Context, r model.CPUUtilizationReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.reports = append(f.reports, r)
	return nil
}

func (f *fakeSink) Close(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func testConfig() config.Config {
	return config.Config{
		NodeID:      "node-a",
		StatPath:    "/proc/stat",
		Delay:       time.Millisecond,
		ColorMode:   render.ColorNone,
		GreenUntil:  2,
		YellowUntil: 4,
		Palette:     render.DefaultPalette,
		LogLevel:    "error",
	}
}

func newTestAgent(t *testing.T, cfg config.Config, stdout io.Writer, opts ...Option) *Agent {
	t.Helper()
	opts = append([]Option{
		WithStatSource(system.NewStaticStatSource(statBefore, statAfter)),
		WithStdout(stdout),
	}, opts...)
	a, err := New(cfg, BuildLogger(cfg, io.Discard), opts...)
	require.NoError(t, err)
	return a
}

func TestRunPrintsBars(t *testing.T) {
	var out bytes.Buffer
	a := newTestAgent(t, testConfig(), &out)

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, "█ \n", out.String())
}

func TestRunColorsWholeLine(t *testing.T) {
	cfg := testConfig()
	cfg.ColorMode = render.ColorTmux
	cfg.GreenUntil = 0.5
	cfg.YellowUntil = 0.9

	var out bytes.Buffer
	require.NoError(t, newTestAgent(t, cfg, &out).Run(context.Background()))
	assert.Equal(t, "#[fg=red]█ #[fg=default]\n", out.String())
}

func TestRunReportsToSink(t *testing.T) {
	sink := &fakeSink{}
	var out bytes.Buffer
	a := newTestAgent(t, testConfig(), &out, WithSink(sink))

	require.NoError(t, a.Run(context.Background()))
	require.Len(t, sink.reports, 1)
	r := sink.reports[0]
	assert.Equal(t, "node-a", r.NodeID)
	assert.Equal(t, "█ ", r.Glyphs)
	assert.Equal(t, 1.0, r.Load)
	assert.Equal(t, 1, sink.closed)
}

func TestRunSinkFailuresAreNotFatal(t *testing.T) {
	tests := []struct {
		name string
		sink *fakeSink
	}{
		{"connect fails", &fakeSink{connectErr: errors.New("refused")}},
		{"send fails", &fakeSink{sendErr: errors.New("broken pipe")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			a := newTestAgent(t, testConfig(), &out, WithSink(tt.sink))

			require.NoError(t, a.Run(context.Background()))
			assert.Equal(t, "█ \n", out.String())
			assert.Empty(t, tt.sink.reports)
			assert.Equal(t, 1, tt.sink.closed)
		})
	}
}

func TestRunParseErrorIsFatal(t *testing.T) {
	var out bytes.Buffer
	sink := &fakeSink{}
	a := newTestAgent(t, testConfig(), &out,
		WithStatSource(system.NewStaticStatSource("garbage\n")),
		WithSink(sink),
	)

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, procstat.ErrNoAggregateLine))
	assert.Empty(t, out.String())
	assert.Empty(t, sink.reports)
}

func TestNewRejectsBadPalette(t *testing.T) {
	cfg := testConfig()
	cfg.Palette = "#"
	_, err := New(cfg, BuildLogger(cfg, io.Discard))
	assert.ErrorIs(t, err, render.ErrPaletteTooShort)
}

func TestBuildLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.LogLevel = "info"
	cfg.LogJSON = true

	BuildLogger(cfg, &buf).Info("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":1`)
}
