// Package loader opens an APEX assembly source file and hands it to
// package parser, the way the reference loader opens a binary and
// hands its sections to the decoder.
package loader

import (
	"errors"
	"fmt"
	"os"

	"github.com/apexsim/apex/insts"
	"github.com/apexsim/apex/parser"
)

// Program is a loaded, parsed instruction stream ready for
// engine.NewEngine.
type Program struct {
	Path string
	Code []insts.Instruction
}

// Load opens path, parses it as APEX assembly, and returns the
// resulting Program. Per-line parse errors are joined into a single
// error so callers get one message naming every malformed line.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	defer f.Close()

	code, errs := parser.Parse(f)
	if len(errs) > 0 {
		return nil, fmt.Errorf("loader: %s: %w", path, errors.Join(errs...))
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("loader: %s: no instructions", path)
	}

	return &Program{Path: path, Code: code}, nil
}
