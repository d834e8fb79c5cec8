package procstat

// CounterCount is the number of tick counters carried by every cpu line.
const CounterCount = 10

// CoreRecord holds the raw tick counters of one logical core at one instant.
type CoreRecord struct {
	ID        uint32 `json:"id"`
	User      uint64 `json:"user"`
	Nice      uint64 `json:"nice"`
	System    uint64 `json:"system"`
	Idle      uint64 `json:"idle"`
	IOWait    uint64 `json:"iowait"`
	IRQ       uint64 `json:"irq"`
	SoftIRQ   uint64 `json:"softirq"`
	Steal     uint64 `json:"steal"`
	Guest     uint64 `json:"guest"`
	GuestNice uint64 `json:"guest_nice"`
}

// Total returns the ticks accounted to the core. Guest time is already part
// of User, so Guest and GuestNice are left out.
func (c CoreRecord) Total() uint64 {
	return c.User + c.Nice + c.System + c.Idle + c.IOWait + c.IRQ + c.SoftIRQ + c.Steal
}

// IdleTicks returns idle plus iowait ticks.
func (c CoreRecord) IdleTicks() uint64 {
	return c.Idle + c.IOWait
}

// Sample is one reading of all cores, ordered by ascending ID.
type Sample struct {
	Cores []CoreRecord `json:"cores"`
}

func (s Sample) Len() int {
	return len(s.Cores)
}

// IDs returns the core ids in sample order.
func (s Sample) IDs() []uint32 {
	ids := make([]uint32, 0, len(s.Cores))
	for _, c := range s.Cores {
		ids = append(ids, c.ID)
	}
	return ids
}

func newCoreRecord(id uint32, vals []uint64) CoreRecord {
	return CoreRecord{
		ID:        id,
		User:      vals[0],
		Nice:      vals[1],
		System:    vals[2],
		Idle:      vals[3],
		IOWait:    vals[4],
		IRQ:       vals[5],
		SoftIRQ:   vals[6],
		Steal:     vals[7],
		Guest:     vals[8],
		GuestNice: vals[9],
	}
}
