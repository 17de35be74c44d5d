// Package engine implements the APEX seven-stage in-order pipeline:
// the per-stage instruction semantics, the stall-only data-hazard
// interlock, control-hazard flush/redirect, and the halt/drain
// protocol. It is the cycle-accurate core the rest of this module
// (parser, trace, cmd/apex) treats as a black box driven one Tick at
// a time.
package engine

import "github.com/apexsim/apex/insts"

// slot names a pipeline latch position, in the fixed stage order.
type slot int

const (
	slotF slot = iota
	slotDRF
	slotEX1
	slotEX2
	slotMEM1
	slotMEM2
	slotWB
	numSlots
)

// StageNames gives the display name of each latch slot, in F..WB
// order, for trace formatting outside this package.
var StageNames = [numSlots]string{
	slotF:    "Fetch",
	slotDRF:  "Decode/RF",
	slotEX1:  "Execute1",
	slotEX2:  "Execute2",
	slotMEM1: "Memory1",
	slotMEM2: "Memory2",
	slotWB:   "Writeback",
}

func (s slot) String() string {
	if int(s) < 0 || int(s) >= len(StageNames) {
		return "?"
	}
	return StageNames[s]
}

// Latch is the storage between two pipeline stages: a snapshot of the
// in-flight instruction plus whatever intermediate values stages
// downstream of its producer need.
type Latch struct {
	PC  int32
	Op  insts.Op
	Rd  int
	Rs1 int
	Rs2 int
	Imm int32

	Rs1Value int32
	Rs2Value int32
	RdValue  int32
	Buffer   int32

	MemAddress int32

	Busy     bool
	Stalled  bool
	Executed bool
	Empty    bool

	// haltFollowerLoaded tracks whether, while this slot holds HALT and
	// is itself stalled, fetch has already performed its one-shot load
	// of the following instruction (see (*Engine).fetch).
	haltFollowerLoaded bool
}

// Clear turns l into a bubble: empty, sentinel Rd, zeroed value
// fields. Busy/Stalled are left to the caller, since those reflect
// stage gating decided by the driver, not the latch's own content.
func (l *Latch) Clear() {
	l.PC = 0
	l.Op = insts.OpNOP
	l.Rd = insts.RdSentinel
	l.Rs1 = insts.RdSentinel
	l.Rs2 = insts.RdSentinel
	l.Imm = 0
	l.Rs1Value = 0
	l.Rs2Value = 0
	l.RdValue = 0
	l.Buffer = 0
	l.MemAddress = 0
	l.Executed = false
	l.Empty = true
	l.haltFollowerLoaded = false
}

// newBootLatch returns the latch a stage slot holds at boot. Every
// slot except Fetch starts busy and empty so nothing downstream
// executes until Fetch has produced a real instruction and it has
// propagated forward.
func newBootLatch(s slot) Latch {
	l := Latch{Rd: insts.RdSentinel, Rs1: insts.RdSentinel, Rs2: insts.RdSentinel, Empty: true}
	if s != slotF {
		l.Busy = true
	}
	return l
}
