package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apexsim/apex/insts"
)

var _ = Describe("Describe", func() {
	It("reports ALU-register kind and flag participation for ADD", func() {
		d := insts.Describe(insts.OpADD)
		Expect(d.Kind).To(Equal(insts.KindALUReg))
		Expect(d.WritesRd).To(BeTrue())
		Expect(d.SetsArithFlags).To(BeTrue())
		Expect(d.IsBranch).To(BeFalse())
	})

	It("reports store-immediate kind for STORE without writing rd", func() {
		d := insts.Describe(insts.OpSTORE)
		Expect(d.Kind).To(Equal(insts.KindStoreImm))
		Expect(d.WritesRd).To(BeFalse())
		Expect(d.TouchesMem).To(BeTrue())
		Expect(d.MemIsWrite).To(BeTrue())
	})

	It("reports branch kind for BZ/BNZ/JUMP", func() {
		Expect(insts.Describe(insts.OpBZ).IsBranch).To(BeTrue())
		Expect(insts.Describe(insts.OpBNZ).IsBranch).To(BeTrue())
		Expect(insts.Describe(insts.OpJUMP).IsBranch).To(BeTrue())
	})

	It("falls back to NOP for an unknown opcode", func() {
		unknown := insts.Op(255)
		d := insts.Describe(unknown)
		Expect(d.Kind).To(Equal(insts.KindNOP))
		Expect(d.Mnemonic).To(Equal("NOP"))
	})
})

var _ = Describe("Lookup", func() {
	It("resolves a plain mnemonic to its opcode", func() {
		op, ok := insts.Lookup("ADD")
		Expect(ok).To(BeTrue())
		Expect(op).To(Equal(insts.OpADD))
	})

	It("resolves the hyphenated EX-OR mnemonic", func() {
		op, ok := insts.Lookup("EX-OR")
		Expect(ok).To(BeTrue())
		Expect(op).To(Equal(insts.OpEXOR))
	})

	It("reports not-found for an unrecognized mnemonic", func() {
		_, ok := insts.Lookup("FROBNICATE")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Instruction.Mnemonic", func() {
	It("renders the textual opcode name", func() {
		i := insts.Instruction{Op: insts.OpMOVC}
		Expect(i.Mnemonic()).To(Equal("MOVC"))
	})

	It("renders EX-OR with its hyphen", func() {
		i := insts.Instruction{Op: insts.OpEXOR}
		Expect(i.Mnemonic()).To(Equal("EX-OR"))
	})
})
