// Package trace renders one cycle's pipeline latches as the
// human-readable per-stage lines spec.md's display mode prints,
// grounded on the reference pipeline's stall-profile formatter.
package trace

import (
	"fmt"
	"strings"

	"github.com/apexsim/apex/engine"
	"github.com/apexsim/apex/insts"
)

// FormatCycle renders one line per pipeline stage, in Fetch..
// Writeback order, describing what each stage's latch held during the
// cycle the caller captured latches from.
func FormatCycle(latches [7]engine.Latch) []string {
	lines := make([]string, 0, len(latches))
	for i, l := range latches {
		lines = append(lines, fmt.Sprintf("%-10s: %s", engine.StageNames[i], describeLatch(l)))
	}
	return lines
}

func describeLatch(l engine.Latch) string {
	if l.Empty {
		return "EMPTY"
	}
	return fmt.Sprintf("pc(%d) %s", l.PC, render(l))
}

// render formats a latch's instruction the way the assembler that
// produced it would print it back: MNEMONIC,operand,operand,...
func render(l engine.Latch) string {
	desc := insts.Describe(l.Op)
	var operands []string

	addReg := func(r int) {
		if r != insts.RdSentinel {
			operands = append(operands, fmt.Sprintf("R%d", r))
		}
	}
	addImm := func() {
		operands = append(operands, fmt.Sprintf("#%d", l.Imm))
	}

	switch desc.Kind {
	case insts.KindNOP, insts.KindHalt:
	case insts.KindMOVC:
		addReg(l.Rd)
		addImm()
	case insts.KindMOV:
		addReg(l.Rd)
		addReg(l.Rs1)
	case insts.KindALUReg:
		addReg(l.Rd)
		addReg(l.Rs1)
		addReg(l.Rs2)
	case insts.KindALUImm:
		addReg(l.Rd)
		addReg(l.Rs1)
		addImm()
	case insts.KindLoadImm:
		addReg(l.Rd)
		addReg(l.Rs1)
		addImm()
	case insts.KindLoadReg:
		addReg(l.Rd)
		addReg(l.Rs1)
		addReg(l.Rs2)
	case insts.KindStoreImm:
		addReg(l.Rs1)
		addReg(l.Rs2)
		addImm()
	case insts.KindStoreReg:
		addReg(l.Rd)
		addReg(l.Rs1)
		addReg(l.Rs2)
	case insts.KindBranch:
		addImm()
	case insts.KindJump:
		addReg(l.Rs1)
		addImm()
	}

	if len(operands) == 0 {
		return desc.Mnemonic
	}
	return desc.Mnemonic + "," + strings.Join(operands, ",")
}
