package stream

import (
	"context"
	"encoding/json"
	"time"

	"cpubars/internal/collector"
	"cpubars/internal/model"
	"cpubars/internal/render"
	"cpubars/internal/utilization"
)

// Sink delivers one utilization report to a backend.
type Sink interface {
	Connect(ctx context.Context) error
	SendReport(ctx context.Context, r model.CPUUtilizationReport) error
	Close(ctx context.Context) error
}

func EncodeEnvelope(e model.Envelope) ([]byte, error) {
	return json.Marshal(e)
}

func NewReportEnvelope(r model.CPUUtilizationReport) model.Envelope {
	return model.Envelope{
		Type:          model.MetricTypeCPUUtilization,
		NodeID:        r.NodeID,
		TimestampUnix: r.TimestampUnix,
		Payload:       r,
	}
}

func NewCPUUtilizationReport(nodeID string, delay time.Duration, m collector.Measurement, out render.Output) model.CPUUtilizationReport {
	sum := utilization.Summarize(m.Utilization)
	cores := make([]model.CoreUsage, 0, len(m.Utilization.Cores))
	for _, c := range m.Utilization.Cores {
		usage := model.CoreUsage{ID: c.ID, Ratio: c.Ratio}
		if c.Anomaly != utilization.AnomalyNone {
			usage.Anomaly = c.Anomaly.String()
		}
		cores = append(cores, usage)
	}
	return model.CPUUtilizationReport{
		NodeID:        nodeID,
		TimestampUnix: m.StartedAt.Add(m.Elapsed).Unix(),
		DelayMillis:   delay.Milliseconds(),
		Cores:         cores,
		Load:          sum.Load,
		MeanRatio:     sum.Mean,
		MaxRatio:      sum.Max,
		Band:          out.Band.String(),
		Glyphs:        out.Glyphs,
	}
}
