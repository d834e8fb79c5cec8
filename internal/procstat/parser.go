// Package procstat parses the cpu section of /proc/stat.
package procstat

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const cpuPrefix = "cpu"

// Parse turns a /proc/stat dump into a Sample. The first cpu line must be the
// aggregate "cpu" line, which is validated and dropped. Per-core "cpuN" lines
// follow until the first line without the cpu prefix. Cores are returned
// sorted by id. On error no partial Sample is returned.
func Parse(raw string) (Sample, error) {
	lines := strings.Split(raw, "\n")

	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i == len(lines) {
		return Sample{}, ErrEmpty
	}

	first := strings.TrimRight(lines[i], "\r")
	if !isAggregateLine(first) {
		return Sample{}, lineErr(i+1, first, ErrNoAggregateLine)
	}
	if _, err := parseCounters(strings.Fields(first)[1:]); err != nil {
		return Sample{}, lineErr(i+1, first, err)
	}
	i++

	cores := make([]CoreRecord, 0, 16)
	seen := make(map[uint32]struct{})
	for ; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		if !strings.HasPrefix(line, cpuPrefix) {
			break
		}
		core, err := parseCoreLine(line)
		if err != nil {
			return Sample{}, lineErr(i+1, line, err)
		}
		if _, dup := seen[core.ID]; dup {
			return Sample{}, lineErr(i+1, line, fmt.Errorf("%w: cpu%d", ErrDuplicateCoreID, core.ID))
		}
		seen[core.ID] = struct{}{}
		cores = append(cores, core)
	}

	if len(cores) == 0 {
		return Sample{}, ErrEmpty
	}

	sort.Slice(cores, func(a, b int) bool {
		return cores[a].ID < cores[b].ID
	})
	return Sample{Cores: cores}, nil
}

func isAggregateLine(line string) bool {
	if !strings.HasPrefix(line, cpuPrefix) || len(line) == len(cpuPrefix) {
		return false
	}
	next := line[len(cpuPrefix)]
	return next == ' ' || next == '\t'
}

func parseCoreLine(line string) (CoreRecord, error) {
	if isAggregateLine(line) {
		return CoreRecord{}, fmt.Errorf("%w: repeated aggregate line", ErrMalformedLine)
	}
	fields := strings.Fields(line)
	id, err := parseCoreID(fields[0])
	if err != nil {
		return CoreRecord{}, err
	}
	vals, err := parseCounters(fields[1:])
	if err != nil {
		return CoreRecord{}, err
	}
	return newCoreRecord(id, vals), nil
}

func parseCoreID(label string) (uint32, error) {
	digits := strings.TrimPrefix(label, cpuPrefix)
	if digits == "" {
		return 0, fmt.Errorf("%w: missing core id in %q", ErrMalformedLine, label)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, fmt.Errorf("%w: invalid core id in %q", ErrMalformedLine, label)
		}
	}
	id, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: core id %q: %v", ErrMalformedLine, digits, err)
	}
	return uint32(id), nil
}

func parseCounters(fields []string) ([]uint64, error) {
	if len(fields) != CounterCount {
		return nil, fmt.Errorf("%w: expected %d counters, got %d", ErrMalformedLine, CounterCount, len(fields))
	}
	vals := make([]uint64, 0, CounterCount)
	for _, field := range fields {
		v, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: counter %q: %v", ErrMalformedLine, field, err)
		}
		vals = append(vals, v)
	}
	return vals, nil
}
