package train

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler accumulates named scope timings and counters over a run.
type Profiler struct {
	scopes map[string]time.Duration
	starts map[string]time.Time
	counts map[string]int
	order  []string
}

func NewProfiler() *Profiler {
	return &Profiler{
		scopes: make(map[string]time.Duration),
		starts: make(map[string]time.Time),
		counts: make(map[string]int),
	}
}

func (p *Profiler) BeginScope(name string) {
	p.starts[name] = time.Now()
	if _, seen := p.scopes[name]; !seen {
		p.scopes[name] = 0
		p.order = append(p.order, name)
	}
}

// EndScope adds the time since the matching BeginScope to the scope total.
func (p *Profiler) EndScope(name string) {
	if start, ok := p.starts[name]; ok {
		p.scopes[name] += time.Since(start)
		delete(p.starts, name)
	}
}

func (p *Profiler) AddCount(name string, n int) {
	p.counts[name] += n
}

func (p *Profiler) Count(name string) int { return p.counts[name] }

func (p *Profiler) Duration(name string) time.Duration { return p.scopes[name] }

// Reset zeroes every total and counter and forgets open scopes.
func (p *Profiler) Reset() {
	for k := range p.scopes {
		p.scopes[k] = 0
	}
	clear(p.starts)
	clear(p.counts)
}

func (p *Profiler) Summary() string {
	var sb strings.Builder
	sb.WriteString("Timings:\n")
	for _, name := range p.order {
		ms := float64(p.scopes[name].Microseconds()) / 1000.0
		sb.WriteString(fmt.Sprintf("  %-15s: %.2f ms\n", name, ms))
	}

	sb.WriteString("Counters:\n")
	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-15s: %d\n", k, p.counts[k]))
	}
	return sb.String()
}
