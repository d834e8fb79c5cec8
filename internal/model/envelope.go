package model

type MetricType string

const (
	MetricTypeCPUUtilization MetricType = "cpu_utilization"
)

// Envelope is transport-agnostic framing for report payloads.
type Envelope struct {
	Type          MetricType `json:"type"`
	NodeID        string     `json:"node_id"`
	TimestampUnix int64      `json:"timestamp_unix"`
	Payload       any        `json:"payload"`
}
