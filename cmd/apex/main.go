// Command apex is the APEX pipeline simulator's command-line front
// end: apex <input_file> <mode> <cycle_budget>, where mode is either
// "simulate" (run to completion/budget and print final architectural
// state) or "display" (also print a per-cycle pipeline trace).
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/apexsim/apex/engine"
	"github.com/apexsim/apex/loader"
	"github.com/apexsim/apex/trace"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "apex:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: apex <input_file> <simulate|display> <cycle_budget>")
	}

	path, mode, budgetArg := args[0], args[1], args[2]
	if mode != "simulate" && mode != "display" {
		return fmt.Errorf("mode must be %q or %q, got %q", "simulate", "display", mode)
	}

	budget, err := strconv.Atoi(budgetArg)
	if err != nil || budget < 0 {
		return fmt.Errorf("cycle budget must be a non-negative integer, got %q", budgetArg)
	}

	prog, err := loader.Load(path)
	if err != nil {
		return err
	}

	e := engine.NewEngine(prog.Code, engine.WithStderr(stderr))

	var reason engine.TerminationReason
	if mode == "display" {
		reason = runDisplay(e, budget, stdout)
	} else {
		reason = e.Run(budget)
	}

	printState(e, reason, stdout)
	return nil
}

// runDisplay drives the engine one cycle at a time, printing the
// pipeline trace after every cycle, per spec §6's display mode.
func runDisplay(e *engine.Engine, budget int, stdout io.Writer) engine.TerminationReason {
	for i := 0; budget == 0 || i < budget; i++ {
		if e.Finished() {
			break
		}
		e.Tick()
		fmt.Fprintf(stdout, "--- cycle %d ---\n", e.Cycle())
		for _, line := range trace.FormatCycle(e.Latches()) {
			fmt.Fprintln(stdout, line)
		}
	}

	return e.Reason()
}

func printState(e *engine.Engine, reason engine.TerminationReason, stdout io.Writer) {
	snap := e.State()
	fmt.Fprintf(stdout, "\nsimulation %s after %d cycle(s), %d instruction(s) completed\n",
		reason, snap.Clock, snap.Completed)
	fmt.Fprintf(stdout, "PC: %d\n", snap.PC)
	fmt.Fprintf(stdout, "flags: Z=%v C=%v O=%v I=%v\n",
		snap.Flags.Zero, snap.Flags.Carry, snap.Flags.Overflow, snap.Flags.Interrupt)
	fmt.Fprint(stdout, "registers:")
	for i, v := range snap.Regs {
		if i%8 == 0 {
			fmt.Fprintln(stdout)
		}
		fmt.Fprintf(stdout, " R%d=%d", i, v)
	}
	fmt.Fprintln(stdout)
}
