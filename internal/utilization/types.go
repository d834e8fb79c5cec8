package utilization

// Anomaly records which zero-ratio policy, if any, produced a core's ratio.
type Anomaly uint8

const (
	AnomalyNone Anomaly = iota
	// AnomalyNoElapsed means no ticks elapsed between the two samples.
	AnomalyNoElapsed
	// AnomalyCounterReset means a counter went backwards (wraparound or reset).
	AnomalyCounterReset
)

func (a Anomaly) String() string {
	switch a {
	case AnomalyNoElapsed:
		return "no_elapsed"
	case AnomalyCounterReset:
		return "counter_reset"
	default:
		return "none"
	}
}

// CoreUtilization is the busy fraction of one core over the sampled interval.
type CoreUtilization struct {
	ID      uint32  `json:"id"`
	Ratio   float64 `json:"ratio"`
	Anomaly Anomaly `json:"-"`
}

// Sample holds one CoreUtilization per core in ascending id order.
type Sample struct {
	Cores []CoreUtilization `json:"cores"`
}

// Load is the sum of all core ratios, i.e. busy cores' worth of work.
func (s Sample) Load() float64 {
	var load float64
	for _, c := range s.Cores {
		load += c.Ratio
	}
	return load
}

func (s Sample) Ratios() []float64 {
	out := make([]float64, 0, len(s.Cores))
	for _, c := range s.Cores {
		out = append(out, c.Ratio)
	}
	return out
}

type Summary struct {
	Cores     int     `json:"cores"`
	Load      float64 `json:"load"`
	Mean      float64 `json:"mean"`
	Max       float64 `json:"max"`
	Anomalies int     `json:"anomalies"`
}

func Summarize(s Sample) Summary {
	out := Summary{Cores: len(s.Cores)}
	for _, c := range s.Cores {
		out.Load += c.Ratio
		if c.Ratio > out.Max {
			out.Max = c.Ratio
		}
		if c.Anomaly != AnomalyNone {
			out.Anomalies++
		}
	}
	if out.Cores > 0 {
		out.Mean = out.Load / float64(out.Cores)
	}
	return out
}
