package model

// CoreUsage is one core's busy ratio in a report.
type CoreUsage struct {
	ID      uint32  `json:"id"`
	Ratio   float64 `json:"ratio"`
	Anomaly string  `json:"anomaly,omitempty"`
}

// CPUUtilizationReport carries the result of one measurement cycle.
type CPUUtilizationReport struct {
	NodeID        string      `json:"node_id"`
	TimestampUnix int64       `json:"timestamp_unix"`
	DelayMillis   int64       `json:"delay_ms"`
	Cores         []CoreUsage `json:"cores"`
	Load          float64     `json:"load"`
	MeanRatio     float64     `json:"mean_ratio"`
	MaxRatio      float64     `json:"max_ratio"`
	Band          string      `json:"band"`
	Glyphs        string      `json:"glyphs"`
}
