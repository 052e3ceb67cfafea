package demo

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Greeter formats greetings for a named application.
type Greeter struct {
	App string
}

func (g *Greeter) Greet(name, punctuation string) string {
	return fmt.Sprintf("Hello %s, from %s%s", name, g.App, punctuation)
}

// Connection is a parameterized dependency: one instance per target.
type Connection struct {
	Target  string
	Timeout time.Duration
	Opened  time.Time
}

func (c *Connection) String() string {
	return fmt.Sprintf("conn(%s, timeout=%s)", c.Target, c.Timeout)
}

// ── Reports ───────────────────────────────────────────────────────────────────

// Report is implemented by every dependency tagged "reports".
type Report interface {
	Title() string
	Lines() []string
}

// RuntimeReport describes the Go runtime.
type RuntimeReport struct{}

func (RuntimeReport) Title() string { return "runtime" }

func (RuntimeReport) Lines() []string {
	return []string{
		"go: " + runtime.Version(),
		fmt.Sprintf("goroutines: %d", runtime.NumGoroutine()),
		fmt.Sprintf("cpus: %d", runtime.NumCPU()),
	}
}

// MemoryReport describes heap usage.
type MemoryReport struct{}

func (MemoryReport) Title() string { return "memory" }

func (MemoryReport) Lines() []string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return []string{
		fmt.Sprintf("heap alloc: %d", m.HeapAlloc),
		fmt.Sprintf("gc cycles: %d", m.NumGC),
	}
}

// Summary concatenates reports in order.
type Summary struct {
	Reports []Report
}

func (s *Summary) String() string {
	var b strings.Builder
	for _, r := range s.Reports {
		fmt.Fprintf(&b, "[%s]\n", r.Title())
		for _, l := range r.Lines() {
			fmt.Fprintf(&b, "  %s\n", l)
		}
	}
	return b.String()
}
