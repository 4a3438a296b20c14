// internal/index/stats.go
package index

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Stats accumulates per-position read, write, miss, and resize counters
// for every line of a DataPart, keyed sparsely since most of the 64
// levels only ever see a handful of positions touched. Attaching a
// Stats is optional and must not change query results, only what gets
// recorded about them.
type Stats struct {
	mu    sync.Mutex
	lines [levels]lineStats
}

type lineStats struct {
	reads   map[uint64]uint64
	writes  map[uint64]uint64
	misses  map[uint64]uint64
	resizes map[uint64]uint64
}

func newLineStats() lineStats {
	return lineStats{
		reads:   make(map[uint64]uint64),
		writes:  make(map[uint64]uint64),
		misses:  make(map[uint64]uint64),
		resizes: make(map[uint64]uint64),
	}
}

func newStats() *Stats {
	s := &Stats{}
	for i := range s.lines {
		s.lines[i] = newLineStats()
	}
	return s
}

func (s *Stats) recordRead(line int, pos uint64) {
	s.mu.Lock()
	s.lines[line].reads[pos]++
	s.mu.Unlock()
}

func (s *Stats) recordWrite(line int, pos uint64) {
	s.mu.Lock()
	s.lines[line].writes[pos]++
	s.mu.Unlock()
}

func (s *Stats) recordResize(line int, delta int) {
	s.mu.Lock()
	s.lines[line].resizes[uint64(delta)]++
	s.mu.Unlock()
}

// recordMiss is called by Line.Get when a read was served from the
// line's base tier, which Line detects as a change in its KVStorage's
// miss count across the read.
func (s *Stats) recordMiss(line int, pos uint64) {
	s.mu.Lock()
	s.lines[line].misses[pos]++
	s.mu.Unlock()
}

// Dump writes every line's counters in ascending position order, one
// section per line id from 0 to 63, in this text format:
//
//	line_id <i>
//	read <pos>:<count> ...
//	write <pos>:<count> ...
//	miss <pos>:<count> ...
//	resize <delta>:<count> ...
func (s *Stats) Dump(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < levels; i++ {
		if _, err := fmt.Fprintf(w, "line_id %d\n", i); err != nil {
			return err
		}
		if err := dumpCounterRow(w, "read", s.lines[i].reads); err != nil {
			return err
		}
		if err := dumpCounterRow(w, "write", s.lines[i].writes); err != nil {
			return err
		}
		if err := dumpCounterRow(w, "miss", s.lines[i].misses); err != nil {
			return err
		}
		if err := dumpCounterRow(w, "resize", s.lines[i].resizes); err != nil {
			return err
		}
	}
	return nil
}

func dumpCounterRow(w io.Writer, label string, counts map[uint64]uint64) error {
	keys := make([]uint64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })

	if _, err := fmt.Fprint(w, label); err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, " %d:%d", k, counts[k]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "\n")
	return err
}
