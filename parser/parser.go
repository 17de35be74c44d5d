// Package parser reads an APEX assembly source file into an
// instruction stream the engine can execute, one comma-separated line
// per instruction, in the format the reference assembler emits:
// MNEMONIC,operand,operand,... with registers written "R<n>" and
// immediates written "#<n>".
package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/apexsim/apex/insts"
)

// ParseError describes a single malformed line. Parse collects every
// ParseError it encounters rather than stopping at the first one, so
// a caller can report every problem in a source file at once.
type ParseError struct {
	Line    int
	Text    string
	Problem string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Problem, e.Text)
}

// Parse reads r as APEX assembly and returns the decoded instruction
// stream. Lines that fail to parse are skipped and reported as errors;
// they do not abort the rest of the file.
func Parse(r io.Reader) ([]insts.Instruction, []error) {
	var program []insts.Instruction
	var errs []error

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		inst, err := parseLine(line)
		if err != nil {
			errs = append(errs, &ParseError{Line: lineNo, Text: raw, Problem: err.Error()})
			continue
		}
		program = append(program, inst)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("reading input: %w", err))
	}

	return program, errs
}

func parseLine(line string) (insts.Instruction, error) {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	mnemonic := strings.ToUpper(fields[0])
	op, ok := insts.Lookup(mnemonic)
	if !ok {
		return insts.Instruction{}, fmt.Errorf("unknown mnemonic %q", mnemonic)
	}

	operands := fields[1:]
	desc := insts.Describe(op)
	inst := insts.Instruction{Op: op, Rd: insts.RdSentinel, Rs1: insts.RdSentinel, Rs2: insts.RdSentinel}

	want, err := operandShape(desc.Kind)
	if err != nil {
		return insts.Instruction{}, err
	}
	if len(operands) != len(want) {
		return insts.Instruction{}, fmt.Errorf("%s wants %d operand(s), got %d", mnemonic, len(want), len(operands))
	}

	for i, kind := range want {
		switch kind {
		case operandRd:
			r, err := parseRegister(operands[i])
			if err != nil {
				return insts.Instruction{}, err
			}
			inst.Rd = r
		case operandRs1:
			r, err := parseRegister(operands[i])
			if err != nil {
				return insts.Instruction{}, err
			}
			inst.Rs1 = r
		case operandRs2:
			r, err := parseRegister(operands[i])
			if err != nil {
				return insts.Instruction{}, err
			}
			inst.Rs2 = r
		case operandImm:
			v, err := parseImmediate(operands[i])
			if err != nil {
				return insts.Instruction{}, err
			}
			inst.Imm = v
		}
	}

	return inst, nil
}

type operandKind int

const (
	operandRd operandKind = iota
	operandRs1
	operandRs2
	operandImm
)

// operandShape returns the ordered operand list a given instruction
// kind expects, grounded on the reference assembler's field order
// (destination first, then sources, then any immediate).
func operandShape(k insts.Kind) ([]operandKind, error) {
	switch k {
	case insts.KindNOP, insts.KindHalt:
		return nil, nil
	case insts.KindMOVC:
		return []operandKind{operandRd, operandImm}, nil
	case insts.KindMOV:
		return []operandKind{operandRd, operandRs1}, nil
	case insts.KindALUReg:
		return []operandKind{operandRd, operandRs1, operandRs2}, nil
	case insts.KindALUImm:
		return []operandKind{operandRd, operandRs1, operandImm}, nil
	case insts.KindLoadImm:
		return []operandKind{operandRd, operandRs1, operandImm}, nil
	case insts.KindLoadReg:
		return []operandKind{operandRd, operandRs1, operandRs2}, nil
	case insts.KindStoreImm:
		// STORE src, base, #imm : stores src into M[base+imm].
		return []operandKind{operandRs1, operandRs2, operandImm}, nil
	case insts.KindStoreReg:
		// STR src, baseA, baseB : stores src into M[baseA+baseB].
		return []operandKind{operandRd, operandRs1, operandRs2}, nil
	case insts.KindBranch:
		return []operandKind{operandImm}, nil
	case insts.KindJump:
		return []operandKind{operandRs1, operandImm}, nil
	default:
		return nil, fmt.Errorf("unsupported instruction kind %v", k)
	}
}

func parseRegister(tok string) (int, error) {
	tok = strings.ToUpper(tok)
	if !strings.HasPrefix(tok, "R") {
		return 0, fmt.Errorf("expected register operand, got %q", tok)
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil {
		return 0, fmt.Errorf("invalid register %q", tok)
	}
	return n, nil
}

func parseImmediate(tok string) (int32, error) {
	tok = strings.TrimPrefix(tok, "#")
	n, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid immediate %q", tok)
	}
	return int32(n), nil
}
