// Package archstate provides the APEX architectural state: the
// integer register file, the validity scoreboard, condition flags,
// and the flat data memory. Stage functions in package engine are the
// state's only writers; everything else only reads it.
package archstate

// CodeBase is the byte address of the first instruction in the code
// region. PC starts here and advances by 4 per fetch.
const CodeBase int32 = 4000

// NumRegisters is the size of the integer register file.
const NumRegisters = 32

// DataMemorySize is the number of 32-bit signed words the flat data
// memory holds, addressed directly by byte address (no scaling).
const DataMemorySize = 4096

// Flags holds the four 1-bit condition flags.
type Flags struct {
	Zero      bool // ZF
	Carry     bool // CF
	Overflow  bool // OF
	Interrupt bool // IF
}

// State is the APEX architectural state: everything a stage function
// reads or mutates that is not itself a pipeline latch.
type State struct {
	PC    int32
	Clock int

	Regs    [NumRegisters]int32
	Invalid [NumRegisters]bool // scoreboard: true means a prior in-flight write has not yet committed

	Flags Flags

	Memory [DataMemorySize]int32

	Completed int
	CodeSize  int
}

// New returns a State initialized per spec: PC at CodeBase, registers
// and the scoreboard zeroed, flags clear, memory zeroed.
func New(codeSize int) *State {
	return &State{
		PC:       CodeBase,
		CodeSize: codeSize,
	}
}

// Snapshot is a read-only copy of the architectural state, returned to
// callers (the display CLI mode, tests) that must not be able to
// mutate the live simulation through what they were handed.
type Snapshot struct {
	PC        int32
	Clock     int
	Regs      [NumRegisters]int32
	Flags     Flags
	Memory    [DataMemorySize]int32
	Completed int
}

// Snapshot copies the current state into a Snapshot.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		PC:        s.PC,
		Clock:     s.Clock,
		Flags:     s.Flags,
		Completed: s.Completed,
	}
	snap.Regs = s.Regs
	snap.Memory = s.Memory
	return snap
}

// InBounds reports whether addr is a valid data-memory byte address.
func InBounds(addr int32) bool {
	return addr >= 0 && int(addr) < DataMemorySize
}

// ValidRegister reports whether reg is a real register index (as
// opposed to the bubble sentinel or an out-of-range parser mistake).
func ValidRegister(reg int) bool {
	return reg >= 0 && reg < NumRegisters
}
