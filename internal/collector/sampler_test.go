package collector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpubars/internal/procstat"
	"cpubars/internal/system"
	"cpubars/internal/utilization"
)

const (
	statBefore = "cpu  200 0 200 1600 0 0 0 0 0 0\n" +
		"cpu1 100 0 100 800 0 0 0 0 0 0\n" +
		"cpu0 100 0 100 800 0 0 0 0 0 0\n" +
		"intr 0\n"
	statAfter = "cpu  250 0 250 1700 0 0 0 0 0 0\n" +
		"cpu0 150 0 150 800 0 0 0 0 0 0\n" +
		"cpu1 100 0 100 900 0 0 0 0 0 0\n" +
		"intr 0\n"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSamplerMeasure(t *testing.T) {
	s := NewSampler(discardLogger(), system.NewStaticStatSource(statBefore, statAfter), 0)

	m, err := s.Measure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1}, m.Earlier.IDs())
	assert.Equal(t, []uint32{0, 1}, m.Later.IDs())
	require.Len(t, m.Utilization.Cores, 2)
	assert.Equal(t, 1.0, m.Utilization.Cores[0].Ratio)
	assert.Equal(t, 0.0, m.Utilization.Cores[1].Ratio)
	assert.GreaterOrEqual(t, m.Elapsed, time.Duration(0))
}

func TestSamplerSameDumpTwiceIsIdle(t *testing.T) {
	s := NewSampler(discardLogger(), system.NewStaticStatSource(statBefore), 0)

	m, err := s.Measure(context.Background())
	require.NoError(t, err)
	for _, c := range m.Utilization.Cores {
		assert.Equal(t, 0.0, c.Ratio)
		assert.Equal(t, utilization.AnomalyNoElapsed, c.Anomaly)
	}
}

func TestSamplerPropagatesParseErrors(t *testing.T) {
	s := NewSampler(discardLogger(), system.NewStaticStatSource("cpu0 1 2 3\n"), 0)

	_, err := s.Measure(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, procstat.ErrNoAggregateLine))
}

func TestSamplerCoreSetMismatch(t *testing.T) {
	hotplugged := "cpu  0 0 0 0 0 0 0 0 0 0\ncpu0 1 0 0 0 0 0 0 0 0 0\n"
	s := NewSampler(discardLogger(), system.NewStaticStatSource(statBefore, hotplugged), 0)

	_, err := s.Measure(context.Background())
	assert.True(t, errors.Is(err, utilization.ErrCoreSetMismatch))
}

type failingSource struct{ err error }

func (f failingSource) ReadStat(context.Context) (string, error) {
	return "", f.err
}

func TestSamplerSourceError(t *testing.T) {
	boom := errors.New("boom")
	s := NewSampler(discardLogger(), failingSource{err: boom}, 0)

	_, err := s.Measure(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestSamplerCanceledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	s := NewSampler(discardLogger(), system.NewStaticStatSource(statBefore, statAfter), time.Hour)

	_, err := s.Measure(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewSamplerNegativeDelay(t *testing.T) {
	s := NewSampler(nil, system.NewStaticStatSource(statBefore), -time.Second)
	assert.Equal(t, DefaultDelay, s.delay)
}
