package engine

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apexsim/apex/insts"
)

var _ = Describe("hazardUnit.sourcesReady", func() {
	var h hazardUnit

	It("is ready when no needed register is marked invalid", func() {
		var invalid [32]bool
		Expect(h.sourcesReady(&invalid, []int{1, 2})).To(BeTrue())
	})

	It("is not ready when any needed register is marked invalid", func() {
		var invalid [32]bool
		invalid[2] = true
		Expect(h.sourcesReady(&invalid, []int{1, 2})).To(BeFalse())
	})

	It("ignores the bubble sentinel", func() {
		var invalid [32]bool
		Expect(h.sourcesReady(&invalid, []int{insts.RdSentinel})).To(BeTrue())
	})
})

var _ = Describe("neededSources", func() {
	It("treats STR's Rd as a value source, not a destination", func() {
		l := &Latch{Op: insts.OpSTR, Rd: 3, Rs1: 1, Rs2: 2}
		Expect(neededSources(l)).To(ConsistOf(3, 1, 2))
	})

	It("checks both operands for a register-form ALU op", func() {
		l := &Latch{Op: insts.OpADD, Rs1: 1, Rs2: 2}
		Expect(neededSources(l)).To(ConsistOf(1, 2))
	})

	It("checks only Rs1 for an immediate-form ALU op", func() {
		l := &Latch{Op: insts.OpADDL, Rs1: 1}
		Expect(neededSources(l)).To(ConsistOf(1))
	})

	It("needs nothing for MOVC", func() {
		l := &Latch{Op: insts.OpMOVC}
		Expect(neededSources(l)).To(BeEmpty())
	})
})

var _ = Describe("hazardUnit.priorArithmeticPending", func() {
	var h hazardUnit

	It("is false when every in-flight slot is empty", func() {
		var latches [numSlots]Latch
		for s := range latches {
			latches[s] = Latch{Empty: true}
		}
		Expect(h.priorArithmeticPending(&latches)).To(BeFalse())
	})

	It("is true when an arithmetic op sits anywhere from EX1 through MEM2", func() {
		var latches [numSlots]Latch
		for s := range latches {
			latches[s] = Latch{Empty: true}
		}
		latches[slotMEM1] = Latch{Op: insts.OpADD}
		Expect(h.priorArithmeticPending(&latches)).To(BeTrue())
	})

	It("ignores arithmetic ops outside the EX1..MEM2 window", func() {
		var latches [numSlots]Latch
		for s := range latches {
			latches[s] = Latch{Empty: true}
		}
		latches[slotWB] = Latch{Op: insts.OpADD}
		Expect(h.priorArithmeticPending(&latches)).To(BeFalse())
	})
})
