package engine

import (
	"fmt"

	"github.com/apexsim/apex/archstate"
	"github.com/apexsim/apex/insts"
)

// writebackStatus is the small status code Writeback hands back to the
// cycle driver, per spec §7 ("errors are never thrown across stage
// boundaries: every stage returns a small status code").
type writebackStatus int

const (
	wbNone writebackStatus = iota
	wbEmpty
	wbHalted
)

// fetch implements spec §4.2's Fetch contract.
func (e *Engine) fetch() {
	l := &e.latches[slotF]
	l.Executed = false

	if e.justFlushed {
		// The flush already turned this slot into a bubble this cycle;
		// leaving it alone is what makes F show empty at the next cycle
		// (spec's flush-integrity invariant).
		l.Executed = true
		return
	}

	if l.Busy {
		return
	}

	if l.Stalled {
		if l.Op == insts.OpHALT && !l.haltFollowerLoaded {
			e.loadFetch(l)
			l.haltFollowerLoaded = true
		}
		l.Executed = true
		return
	}

	e.loadFetch(l)
	l.Executed = true
}

// loadFetch reads the instruction at the current PC into l and
// advances PC, or marks l empty without advancing PC when the
// instruction stream is exhausted.
func (e *Engine) loadFetch(l *Latch) {
	idx := int((e.state.PC - archstate.CodeBase) / 4)
	if idx < 0 || idx >= len(e.code) {
		l.Clear()
		return
	}

	in := e.code[idx]
	l.PC = e.state.PC
	l.Op = in.Op
	l.Rd = in.Rd
	l.Rs1 = in.Rs1
	l.Rs2 = in.Rs2
	l.Imm = in.Imm
	l.Rs1Value = 0
	l.Rs2Value = 0
	l.RdValue = 0
	l.Buffer = 0
	l.MemAddress = 0
	l.Empty = false
	l.haltFollowerLoaded = false

	e.state.PC += 4
}

// decodeRF implements spec §4.2's Decode/RF contract: scoreboard
// source-validity checks, the BZ/BNZ prior-arithmetic check, and the
// HALT special case.
func (e *Engine) decodeRF() {
	l := &e.latches[slotDRF]
	l.Executed = false

	if l.Busy || l.Stalled {
		return
	}
	if l.Empty {
		l.Executed = true
		return
	}

	desc := insts.Describe(l.Op)
	if _, known := e.knownOp(l.Op); !known {
		e.logf("unknown opcode %d at pc(%d), treated as NOP", l.Op, l.PC)
		l.Op = insts.OpNOP
		desc = insts.Describe(insts.OpNOP)
	}

	switch desc.Kind {
	case insts.KindBranch:
		if e.hazard.priorArithmeticPending(&e.latches) {
			e.stallDecodeAndFetch()
			return
		}
	case insts.KindHalt:
		e.state.Flags.Interrupt = true
		e.latches[slotF].Stalled = true
		l.Executed = true
		return
	default:
		needed := neededSources(l)
		if !e.hazard.sourcesReady(&e.state.Invalid, needed) {
			e.stallDecodeAndFetch()
			return
		}
	}

	e.readOperands(l, desc)
	l.Executed = true
}

// stallDecodeAndFetch asserts the stall spec.md §4.2 requires on both
// Decode/RF and Fetch, leaving the latch's value fields untouched.
func (e *Engine) stallDecodeAndFetch() {
	e.latches[slotDRF].Stalled = true
	e.latches[slotF].Stalled = true
}

// readOperands fills in the register/immediate values a ready
// instruction carries forward, per kind.
func (e *Engine) readOperands(l *Latch, desc insts.Descriptor) {
	read := func(r int) int32 {
		if !archstate.ValidRegister(r) {
			return 0
		}
		return e.state.Regs[r]
	}

	switch desc.Kind {
	case insts.KindMOV:
		l.Rs1Value = read(l.Rs1)
	case insts.KindALUReg:
		l.Rs1Value = read(l.Rs1)
		l.Rs2Value = read(l.Rs2)
	case insts.KindALUImm:
		l.Rs1Value = read(l.Rs1)
	case insts.KindLoadImm:
		l.Rs1Value = read(l.Rs1)
	case insts.KindLoadReg:
		l.Rs1Value = read(l.Rs1)
		l.Rs2Value = read(l.Rs2)
	case insts.KindStoreImm:
		l.Rs1Value = read(l.Rs1) // value to store
		l.Rs2Value = read(l.Rs2) // address base
	case insts.KindStoreReg:
		l.RdValue = read(l.Rd) // value to store
		l.Rs1Value = read(l.Rs1)
		l.Rs2Value = read(l.Rs2)
	case insts.KindJump:
		l.Rs1Value = read(l.Rs1)
	}
	l.Buffer = l.Imm
}

// executeOne implements spec §4.2's Execute-1 contract: a reservation
// stage. spec §9 open question 3 is resolved to the canonical EX2-only
// address computation, so the only work left here is the earliest
// possible scoreboard set for any rd-writing opcode.
func (e *Engine) executeOne() {
	l := &e.latches[slotEX1]
	l.Executed = false

	if l.Busy || l.Stalled {
		return
	}
	if l.Empty {
		l.Executed = true
		return
	}

	desc := insts.Describe(l.Op)
	if desc.WritesRd && archstate.ValidRegister(l.Rd) {
		e.state.Invalid[l.Rd] = true
	}
	l.Executed = true
}

// executeTwo implements spec §4.2's Execute-2 contract: ALU/logic
// computation, OF/CF updates, and branch resolution including the
// three-latch flush.
func (e *Engine) executeTwo() {
	l := &e.latches[slotEX2]
	l.Executed = false

	if l.Busy || l.Stalled {
		return
	}
	if l.Empty {
		l.Executed = true
		return
	}

	desc := insts.Describe(l.Op)

	switch desc.Kind {
	case insts.KindMOVC:
		l.RdValue = l.Buffer
	case insts.KindMOV:
		l.RdValue = l.Rs1Value
	case insts.KindALUReg:
		e.applyALU(l, desc, l.Rs1Value, l.Rs2Value)
	case insts.KindALUImm:
		e.applyALU(l, desc, l.Rs1Value, l.Buffer)
	case insts.KindLoadImm:
		l.MemAddress = l.Rs1Value + l.Buffer
	case insts.KindLoadReg:
		l.MemAddress = l.Rs1Value + l.Rs2Value
	case insts.KindStoreImm:
		l.MemAddress = l.Rs2Value + l.Buffer
	case insts.KindStoreReg:
		l.MemAddress = l.Rs1Value + l.Rs2Value
	case insts.KindBranch:
		taken := (l.Op == insts.OpBZ && e.state.Flags.Zero) || (l.Op == insts.OpBNZ && !e.state.Flags.Zero)
		if taken {
			e.resolveBranch(l, l.PC+l.Buffer)
		}
	case insts.KindJump:
		e.resolveBranch(l, l.PC+l.Rs1Value+l.Buffer)
	}

	l.Executed = true
}

// applyALU runs the ALU on a, b and writes the result plus OF/CF
// updates into l and the architectural flags.
func (e *Engine) applyALU(l *Latch, desc insts.Descriptor, a, b int32) {
	res := e.alu.eval(l.Op, a, b)
	l.RdValue = res.value

	if res.divideByZero {
		e.logf("division by zero at pc(%d), quotient set to 0", l.PC)
	}
	if res.touchesOF {
		e.state.Flags.Overflow = res.overflow
	}
	if res.touchesCF {
		e.state.Flags.Carry = res.carry
	}
}

// resolveBranch validates the target, and if valid, redirects PC and
// flushes EX1/DRF/F per spec §4.2.
func (e *Engine) resolveBranch(l *Latch, target int32) {
	if target%4 != 0 || target < archstate.CodeBase {
		e.logf("invalid branch target %d at pc(%d), not taken", target, l.PC)
		return
	}

	// Clear the scoreboard bit of the instruction EX1 currently carries
	// before it is squashed, so it never stays permanently invalid.
	ex1 := &e.latches[slotEX1]
	if !ex1.Empty {
		if d := insts.Describe(ex1.Op); d.WritesRd && archstate.ValidRegister(ex1.Rd) {
			e.state.Invalid[ex1.Rd] = false
		}
	}
	ex1.Clear()
	ex1.Busy = false
	ex1.Stalled = false

	drf := &e.latches[slotDRF]
	drf.Clear()
	drf.Busy = false
	drf.Stalled = false

	f := &e.latches[slotF]
	f.Clear()
	f.Busy = false
	f.Stalled = false

	e.state.PC = target
	e.justFlushed = true
}

// memoryOne is a pass-through: spec §9 open question 3 resolves the
// M1/M2 access duplication to M2-only for deterministic observable
// memory order.
func (e *Engine) memoryOne() {
	l := &e.latches[slotMEM1]
	l.Executed = false
	if l.Busy || l.Stalled {
		return
	}
	l.Executed = true
}

// memoryTwo implements spec §4.2's Memory contract: the single point
// at which LOAD/LDR/STORE/STR actually touch data memory.
func (e *Engine) memoryTwo() {
	l := &e.latches[slotMEM2]
	l.Executed = false

	if l.Busy || l.Stalled {
		return
	}
	if l.Empty {
		l.Executed = true
		return
	}

	desc := insts.Describe(l.Op)
	if desc.TouchesMem {
		if !archstate.InBounds(l.MemAddress) {
			e.logf("memory address %d out of range at pc(%d)", l.MemAddress, l.PC)
		} else if desc.MemIsWrite {
			storeValue := l.Rs1Value
			if desc.Kind == insts.KindStoreReg {
				storeValue = l.RdValue
			}
			e.state.Memory[l.MemAddress] = storeValue
		} else {
			l.RdValue = e.state.Memory[l.MemAddress]
		}
	}

	l.Executed = true
}

// writeback implements spec §4.2's Writeback contract: commit, clear
// the scoreboard, update ZF, count completion, and report the
// terminal sentinels the driver interprets.
func (e *Engine) writeback() writebackStatus {
	l := &e.latches[slotWB]
	l.Executed = false

	if l.Busy || l.Stalled {
		return wbNone
	}
	if l.Empty {
		l.Executed = true
		return wbEmpty
	}

	desc := insts.Describe(l.Op)

	if desc.WritesRd && archstate.ValidRegister(l.Rd) {
		value := l.RdValue
		if l.Op == insts.OpMOVC {
			value = l.Buffer
		}
		e.state.Regs[l.Rd] = value
		e.state.Invalid[l.Rd] = false
		if desc.SetsArithFlags {
			e.state.Flags.Zero = value == 0
		}
	}

	e.state.Completed++
	l.Executed = true

	if l.Op == insts.OpHALT {
		return wbHalted
	}
	return wbNone
}

// knownOp reports whether op has a registered descriptor, so decodeRF
// can distinguish a genuinely unknown opcode (log + demote to NOP)
// from the ordinary NOP case.
func (e *Engine) knownOp(op insts.Op) (insts.Descriptor, bool) {
	d := insts.Describe(op)
	if op == insts.OpNOP {
		return d, true
	}
	if d.Mnemonic == "NOP" {
		return d, false
	}
	return d, true
}

// logf writes a non-fatal runtime diagnostic to the engine's error
// stream, per spec §4.4/§7. Never panics, never fatal.
func (e *Engine) logf(format string, args ...any) {
	if e.stderr == nil {
		return
	}
	fmt.Fprintf(e.stderr, "apex: "+format+"\n", args...)
}
