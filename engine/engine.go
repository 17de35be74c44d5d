package engine

import (
	"io"

	"github.com/apexsim/apex/archstate"
	"github.com/apexsim/apex/insts"
)

// TerminationReason reports why Run stopped driving cycles.
type TerminationReason int

const (
	// Running means the budget was exhausted while the pipeline still
	// had work in flight; Run can be called again to continue.
	Running TerminationReason = iota
	// Halted means a HALT instruction committed at Writeback and the
	// pipeline has fully drained, per spec §5's halt/drain protocol.
	Halted
	// Drained means the instruction stream was exhausted and every
	// latch has emptied out with no HALT ever seen.
	Drained
)

func (r TerminationReason) String() string {
	switch r {
	case Halted:
		return "HALTED"
	case Drained:
		return "DRAINED"
	default:
		return "RUNNING"
	}
}

// Engine drives the APEX seven-stage pipeline one cycle at a time over
// a fixed instruction stream, per spec §4.2's reverse-stage-order tick
// plus push-phase shift.
type Engine struct {
	state   *archstate.State
	code    []insts.Instruction
	latches [numSlots]Latch

	hazard hazardUnit
	alu    alu

	// justFlushed suppresses Fetch for exactly the cycle a branch or
	// jump resolves, so F/DRF/EX1 observably carry bubbles the cycle
	// after the flush (spec §8's control-hazard worked example).
	justFlushed bool

	halted bool

	stderr io.Writer
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithStderr routes non-fatal diagnostics (unknown opcodes, divide by
// zero, out-of-range memory accesses, invalid branch targets) to w
// instead of discarding them.
func WithStderr(w io.Writer) Option {
	return func(e *Engine) { e.stderr = w }
}

// NewEngine builds a fresh Engine over code, with PC booted at
// archstate.CodeBase and every latch in its boot state.
func NewEngine(code []insts.Instruction, opts ...Option) *Engine {
	e := &Engine{
		state: archstate.New(len(code)),
		code:  code,
	}
	for s := slot(0); s < numSlots; s++ {
		e.latches[s] = newBootLatch(s)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns a point-in-time snapshot of the architectural state,
// safe for the caller to retain across further Tick calls.
func (e *Engine) State() archstate.Snapshot {
	return e.state.Snapshot()
}

// Latches returns a copy of the seven pipeline latches, in stage order
// F..WB, for trace formatting.
func (e *Engine) Latches() [numSlots]Latch {
	return e.latches
}

// Tick drives exactly one clock cycle: every stage runs in reverse
// pipeline order (Writeback first, Fetch last) so that a stage sees
// its *own* latch's prior-cycle content before anything upstream of it
// moves, and then the push phase shifts every latch one stage forward,
// per spec §4.2.
func (e *Engine) Tick() {
	e.state.Clock++
	e.justFlushed = false

	status := e.writeback()
	e.memoryTwo()
	e.memoryOne()
	e.executeTwo()
	e.executeOne()
	e.decodeRF()
	e.fetch()

	if status == wbHalted {
		e.halted = true
	}

	e.push()
}

// push implements spec §4.2's push-phase formula: WB<-MEM2<-MEM1<-EX2
// unconditionally, then EX1<-DRF and DRF<-F gated on their own stall
// bits so that a stalled stage's latch is held rather than overwritten.
// A stalled DRF sends a bubble into EX1 and has its stall bit cleared,
// so Decode/RF re-checks its sources on the next cycle.
func (e *Engine) push() {
	drfStalled := e.latches[slotDRF].Stalled
	fStalled := e.latches[slotF].Stalled

	e.latches[slotWB] = e.latches[slotMEM2]
	e.latches[slotMEM2] = e.latches[slotMEM1]
	e.latches[slotMEM1] = e.latches[slotEX2]
	e.latches[slotEX2] = e.latches[slotEX1]

	if drfStalled {
		// DRF holds its instruction; EX1 receives a bubble.
		e.latches[slotEX1].Clear()
		e.latches[slotEX1].Busy = false
		e.latches[slotEX1].Stalled = false
		e.latches[slotDRF].Stalled = false
	} else {
		e.latches[slotEX1] = e.latches[slotDRF]
		e.latches[slotEX1].Stalled = false
	}

	if fStalled {
		if !drfStalled {
			e.latches[slotDRF].Clear()
			e.latches[slotDRF].Busy = false
		}
		// else DRF unchanged: both F and DRF were stalled.
	} else {
		e.latches[slotDRF] = e.latches[slotF]
		e.latches[slotDRF].Stalled = false
		e.latches[slotDRF].Busy = false
	}

	e.latches[slotF].Stalled = false
	if !fStalled {
		e.latches[slotF].Busy = false
	}

	for s := slot(0); s < numSlots; s++ {
		e.latches[s].Executed = false
	}
}

// Finished reports whether the pipeline has nothing left to do: either
// a HALT has committed, or the instruction stream is exhausted and
// every latch has drained to empty.
func (e *Engine) Finished() bool {
	if e.halted {
		return true
	}
	for s := slot(0); s < numSlots; s++ {
		if !e.latches[s].Empty {
			return false
		}
	}
	idx := int((e.state.PC - archstate.CodeBase) / 4)
	return idx >= len(e.code)
}

// Run drives Tick until the pipeline finishes or budget cycles have
// elapsed (budget == 0 means unbounded).
func (e *Engine) Run(budget int) TerminationReason {
	for i := 0; budget == 0 || i < budget; i++ {
		if e.Finished() {
			break
		}
		e.Tick()
	}
	return e.Reason()
}

// Reason reports why the engine is not currently making progress: a
// committed HALT, a drained-and-empty pipeline, or (if neither) that
// it simply hasn't been run to completion yet.
func (e *Engine) Reason() TerminationReason {
	switch {
	case e.halted:
		return Halted
	case e.Finished():
		return Drained
	default:
		return Running
	}
}

// Cycle returns the number of cycles the engine has driven so far.
func (e *Engine) Cycle() int {
	return e.state.Clock
}
