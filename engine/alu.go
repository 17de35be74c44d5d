package engine

import "github.com/apexsim/apex/insts"

// alu implements APEX's arithmetic and logic operations over signed
// 32-bit operands, and the OF/CF updates spec §4.1 assigns to them.
// ZF is deliberately not touched here: it is set at Writeback from the
// committed value, not at Execute-2, so that a stalled consumer
// observes the value the scoreboard actually protects.
type alu struct{}

// aluResult carries the computed value plus the flag updates Execute-2
// applies to the architectural state.
type aluResult struct {
	value        int32
	overflow     bool
	carry        bool
	touchesOF    bool
	touchesCF    bool
	divideByZero bool
}

// eval computes op(a, b) for the given opcode's register or immediate
// form, per spec §4.1's flag-update rules:
//   - ADD/ADDL set OF on signed overflow.
//   - SUB/SUBL set CF when the subtrahend exceeds the minuend.
//   - MUL clears OF/CF.
//   - DIV on b==0 produces 0 and reports divideByZero for the caller to log.
func (alu) eval(op insts.Op, a, b int32) aluResult {
	switch op {
	case insts.OpADD, insts.OpADDL:
		sum := a + b
		overflow := (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum >= 0)
		return aluResult{value: sum, overflow: overflow, touchesOF: true}
	case insts.OpSUB, insts.OpSUBL:
		diff := a - b
		return aluResult{value: diff, carry: b > a, touchesCF: true}
	case insts.OpMUL:
		return aluResult{value: a * b, touchesOF: true, touchesCF: true}
	case insts.OpDIV:
		if b == 0 {
			return aluResult{value: 0, divideByZero: true}
		}
		return aluResult{value: a / b}
	case insts.OpAND:
		return aluResult{value: a & b}
	case insts.OpOR:
		return aluResult{value: a | b}
	case insts.OpEXOR:
		return aluResult{value: a ^ b}
	default:
		return aluResult{value: 0}
	}
}
