package engine

import "github.com/apexsim/apex/insts"

// hazardUnit implements the validity-scoreboard stall interlock. APEX
// has no forwarding network (spec §1): every RAW hazard is resolved by
// stalling Decode/RF (and Fetch with it) until the producing
// instruction's Writeback clears the scoreboard bit.
type hazardUnit struct{}

// sourcesReady reports whether every register in needed is currently
// valid (not marked in-flight by the scoreboard). needed is the set of
// register indices decodeRF determined the instruction actually reads;
// indices outside the register file (such as the bubble sentinel) are
// ignored.
func (hazardUnit) sourcesReady(invalid *[32]bool, needed []int) bool {
	for _, r := range needed {
		if r < 0 || r >= len(invalid) {
			continue
		}
		if invalid[r] {
			return false
		}
	}
	return true
}

// neededSources returns the register indices decodeRF must check
// against the scoreboard before it can read operands for inst, per
// the opcode's descriptor kind.
func neededSources(inst *Latch) []int {
	switch insts.Describe(inst.Op).Kind {
	case insts.KindMOV:
		return []int{inst.Rs1}
	case insts.KindALUReg:
		return []int{inst.Rs1, inst.Rs2}
	case insts.KindALUImm:
		return []int{inst.Rs1}
	case insts.KindLoadImm:
		return []int{inst.Rs1}
	case insts.KindLoadReg:
		return []int{inst.Rs1, inst.Rs2}
	case insts.KindStoreImm:
		return []int{inst.Rs1, inst.Rs2}
	case insts.KindStoreReg:
		return []int{inst.Rd, inst.Rs1, inst.Rs2}
	case insts.KindJump:
		return []int{inst.Rs1}
	default:
		return nil
	}
}

// priorArithmeticPending implements the BZ/BNZ "previous arithmetic
// check" of spec §4.2: it scans every slot between Execute-1 and
// Memory-2 (inclusive) for an in-flight instruction whose Writeback
// has not yet updated ZF. spec §9 open question 4 resolves this as a
// scan rather than a single fixed-slot check.
func (hazardUnit) priorArithmeticPending(latches *[numSlots]Latch) bool {
	for s := slotEX1; s <= slotMEM2; s++ {
		l := &latches[s]
		if l.Empty {
			continue
		}
		if insts.Describe(l.Op).SetsArithFlags {
			return true
		}
	}
	return false
}
