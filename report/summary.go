// Package report renders the observational per-step summary table
// (out of scope for the numerical core, but part of the ambient stack
// every run needs), using jedib0t/go-pretty's table.Writer to render
// one row per completed time step.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/tealeaf/transport"
)

// StepRecord is one time step's worth of observational data.
type StepRecord struct {
	Step       int
	Time       float64
	Iterations int
	Residual   float64
	WallClock  float64
	DeadRanks  int
}

// Summary accumulates StepRecords and renders them as a table.
type Summary struct {
	frequency int
	records   []StepRecord

	mu           sync.Mutex
	messages     int
	peerFailures int
	collectives  int
}

// NewSummary creates a summary that keeps every record but only prints
// a row every `frequency` steps (0 means print every step), matching
// the deck's summary_frequency directive.
func NewSummary(frequency int) *Summary {
	if frequency <= 0 {
		frequency = 1
	}
	return &Summary{frequency: frequency}
}

// Record appends one step's result.
func (s *Summary) Record(r StepRecord) {
	s.records = append(s.records, r)
}

// Subscribe registers the summary as a hook collaborator on cl's
// transport, the same profiling-hook subscription core/port.go's
// callers attach to a port's HookPosPortMsgSend/HookPosPortMsgRecvd.
// Once subscribed, WriteTo's footer reports the real send/recv and
// collective traffic the run generated, instead of only the per-step
// solver results Record captures.
func (s *Summary) Subscribe(cl *transport.Cluster) {
	cl.AcceptHook(transport.HookFunc(func(ctx sim.HookCtx) {
		rec, ok := ctx.Item.(transport.SendRecvHookCtx)
		if !ok {
			return
		}
		s.mu.Lock()
		s.messages++
		if rec.Status == transport.PeerFailed {
			s.peerFailures++
		}
		s.mu.Unlock()
	}))

	cl.AcceptHook(transport.HookFunc(func(ctx sim.HookCtx) {
		if _, ok := ctx.Item.(transport.CollectiveHookCtx); !ok {
			return
		}
		s.mu.Lock()
		s.collectives++
		s.mu.Unlock()
	}))
}

// WriteTo renders every `frequency`-th recorded step as a table to w.
func (s *Summary) WriteTo(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Step", "Time", "Iterations", "Residual", "Wall (s)", "Dead Ranks"})

	for _, r := range s.records {
		if r.Step%s.frequency != 0 {
			continue
		}
		t.AppendRow(table.Row{r.Step, r.Time, r.Iterations, r.Residual, r.WallClock, r.DeadRanks})
	}

	t.Render()

	s.mu.Lock()
	messages, peerFailures, collectives := s.messages, s.peerFailures, s.collectives
	s.mu.Unlock()
	if messages > 0 || collectives > 0 {
		fmt.Fprintf(w, "transport: %d messages (%d peer failures), %d collectives\n",
			messages, peerFailures, collectives)
	}
}

// Records returns every recorded step, for callers that want the raw
// data instead of the rendered table (e.g. tests).
func (s *Summary) Records() []StepRecord { return s.records }
