// Package utilization computes per-core busy ratios between two procstat samples.
package utilization

import (
	"errors"
	"fmt"

	"cpubars/internal/procstat"
)

var ErrCoreSetMismatch = errors.New("core set changed between samples")

// Compute pairs the cores of earlier and later by id and returns the busy
// ratio of each over the interval. Both samples must carry the same core ids.
// A core with no elapsed ticks, or whose counters went backwards, gets ratio 0.
func Compute(earlier, later procstat.Sample) (Sample, error) {
	if err := sameCoreSet(earlier, later); err != nil {
		return Sample{}, err
	}

	prevByID := make(map[uint32]procstat.CoreRecord, len(earlier.Cores))
	for _, c := range earlier.Cores {
		prevByID[c.ID] = c
	}

	out := Sample{Cores: make([]CoreUtilization, 0, len(later.Cores))}
	for _, cur := range later.Cores {
		out.Cores = append(out.Cores, coreUtilization(prevByID[cur.ID], cur))
	}
	return out, nil
}

func coreUtilization(prev, cur procstat.CoreRecord) CoreUtilization {
	out := CoreUtilization{ID: cur.ID}

	curTotal, prevTotal := cur.Total(), prev.Total()
	curIdle, prevIdle := cur.IdleTicks(), prev.IdleTicks()
	switch {
	// Idle going backwards while the total grows is treated as a reset too.
	case curTotal < prevTotal || curIdle < prevIdle:
		out.Anomaly = AnomalyCounterReset
		return out
	case curTotal == prevTotal:
		out.Anomaly = AnomalyNoElapsed
		return out
	}

	totalDelta := curTotal - prevTotal
	idleDelta := curIdle - prevIdle
	if idleDelta >= totalDelta {
		return out
	}
	out.Ratio = clampRatio(float64(totalDelta-idleDelta) / float64(totalDelta))
	return out
}

func clampRatio(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

func sameCoreSet(earlier, later procstat.Sample) error {
	ids := make(map[uint32]struct{}, len(earlier.Cores))
	for _, c := range earlier.Cores {
		ids[c.ID] = struct{}{}
	}

	var added []uint32
	for _, c := range later.Cores {
		if _, ok := ids[c.ID]; !ok {
			added = append(added, c.ID)
			continue
		}
		delete(ids, c.ID)
	}

	if len(added) == 0 && len(ids) == 0 && len(earlier.Cores) == len(later.Cores) {
		return nil
	}
	removed := make([]uint32, 0, len(ids))
	for _, c := range earlier.Cores {
		if _, ok := ids[c.ID]; ok {
			removed = append(removed, c.ID)
		}
	}
	return fmt.Errorf("%w: %d cores before, %d after, added %v, removed %v",
		ErrCoreSetMismatch, len(earlier.Cores), len(later.Cores), added, removed)
}
