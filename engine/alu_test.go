package engine

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apexsim/apex/insts"
)

var _ = Describe("alu.eval", func() {
	var a alu

	It("sets OF on signed ADD overflow", func() {
		res := a.eval(insts.OpADD, 2147483647, 1)
		Expect(res.overflow).To(BeTrue())
		Expect(res.touchesOF).To(BeTrue())
	})

	It("does not set OF on ordinary ADD", func() {
		res := a.eval(insts.OpADD, 2, 3)
		Expect(res.value).To(Equal(int32(5)))
		Expect(res.overflow).To(BeFalse())
	})

	It("sets CF on SUB when the subtrahend exceeds the minuend", func() {
		res := a.eval(insts.OpSUB, 1, 5)
		Expect(res.value).To(Equal(int32(-4)))
		Expect(res.carry).To(BeTrue())
		Expect(res.touchesCF).To(BeTrue())
	})

	It("touches both OF and CF for MUL", func() {
		res := a.eval(insts.OpMUL, 4, 5)
		Expect(res.value).To(Equal(int32(20)))
		Expect(res.touchesOF).To(BeTrue())
		Expect(res.touchesCF).To(BeTrue())
	})

	It("reports divideByZero and yields 0 for DIV by 0", func() {
		res := a.eval(insts.OpDIV, 10, 0)
		Expect(res.value).To(Equal(int32(0)))
		Expect(res.divideByZero).To(BeTrue())
	})

	It("computes ordinary DIV", func() {
		res := a.eval(insts.OpDIV, 10, 3)
		Expect(res.value).To(Equal(int32(3)))
		Expect(res.divideByZero).To(BeFalse())
	})

	It("leaves flags untouched for AND/OR/EX-OR", func() {
		res := a.eval(insts.OpAND, 6, 3)
		Expect(res.value).To(Equal(int32(2)))
		Expect(res.touchesOF).To(BeFalse())
		Expect(res.touchesCF).To(BeFalse())

		res = a.eval(insts.OpOR, 6, 3)
		Expect(res.value).To(Equal(int32(7)))

		res = a.eval(insts.OpEXOR, 6, 3)
		Expect(res.value).To(Equal(int32(5)))
	})
})
