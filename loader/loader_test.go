package loader_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apexsim/apex/insts"
	"github.com/apexsim/apex/loader"
)

var _ = Describe("Load", func() {
	It("loads and parses a valid assembly file", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "prog.asm")
		Expect(os.WriteFile(path, []byte("MOVC,R1,#1\nHALT\n"), 0o644)).To(Succeed())

		prog, err := loader.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Path).To(Equal(path))
		Expect(prog.Code).To(Equal([]insts.Instruction{
			{Op: insts.OpMOVC, Rd: 1, Rs1: insts.RdSentinel, Rs2: insts.RdSentinel, Imm: 1},
			{Op: insts.OpHALT, Rd: insts.RdSentinel, Rs1: insts.RdSentinel, Rs2: insts.RdSentinel},
		}))
	})

	It("returns an error for a missing file", func() {
		_, err := loader.Load(filepath.Join(GinkgoT().TempDir(), "missing.asm"))
		Expect(err).To(HaveOccurred())
	})

	It("returns a joined error for malformed lines", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "bad.asm")
		Expect(os.WriteFile(path, []byte("MOVC,R1,#1\nBOGUS\n"), 0o644)).To(Succeed())

		_, err := loader.Load(path)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("bad.asm"))
	})

	It("returns an error for an empty program", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "empty.asm")
		Expect(os.WriteFile(path, []byte("; nothing here\n"), 0o644)).To(Succeed())

		_, err := loader.Load(path)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("no instructions"))
	})
})
