package engine_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/solverkit/pcengine/pkg/engine"
	"github.com/solverkit/pcengine/pkg/lit"
)

var _ = Describe("Engine", func() {
	var e *engine.Engine

	BeforeEach(func() {
		var err error
		e, err = engine.New()
		Expect(err).NotTo(HaveOccurred())
	})

	// Pure propositional search (scenario S1): {1∨2, ¬1∨2, ¬2∨3} forces
	// atom2 and atom3 true, leaving atom1 free.
	Context("pure clausal search", func() {
		It("finds a model satisfying every clause", func() {
			a1 := e.CreateVar()
			a2 := e.CreateVar()
			a3 := e.CreateVar()

			Expect(e.AddClause([]lit.Literal{lit.Pos(a1), lit.Pos(a2)})).To(Succeed())
			Expect(e.AddClause([]lit.Literal{lit.Neg(a1), lit.Pos(a2)})).To(Succeed())
			Expect(e.AddClause([]lit.Literal{lit.Neg(a2), lit.Pos(a3)})).To(Succeed())

			outcome, err := e.Solve(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(engine.Sat))

			model := e.CurrentModel()
			Expect(model[a2]).To(BeTrue())
			Expect(model[a3]).To(BeTrue())
		})
	})

	// Model enumeration (scenario S6): two unconstrained atoms have exactly
	// four models; NextModel must visit each exactly once and then report
	// Unsat once the space is exhausted.
	Context("model enumeration", func() {
		It("enumerates every model of an unconstrained problem exactly once", func() {
			a1 := e.CreateVar()
			a2 := e.CreateVar()

			seen := map[string]bool{}
			record := func() {
				model := e.CurrentModel()
				key := fmt.Sprintf("%v,%v", model[a1], model[a2])
				Expect(seen).NotTo(HaveKey(key), "model %s enumerated twice", key)
				seen[key] = true
			}

			outcome, err := e.Solve(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(engine.Sat))
			record()

			for i := 0; i < 3; i++ {
				outcome, err = e.NextModel(context.Background())
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome).To(Equal(engine.Sat))
				record()
			}

			Expect(seen).To(HaveLen(4))

			outcome, err = e.NextModel(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(engine.Unsat))
		})
	})

	// register_lazy_residual (spec §4.6/§6): the callback must actually
	// fire once its atom settles, driven by the real watch.Registry Fire*
	// dispatch rather than only being reachable from watch_test.go.
	Context("lazy residuals", func() {
		It("invokes a residual's callback once its trigger value holds", func() {
			a1 := e.CreateVar()

			fired := 0
			Expect(e.RegisterLazyResidual(a1, engine.ValueTrue, func(_ *engine.Engine) error {
				fired++
				return nil
			})).To(Succeed())

			outcome, err := e.Solve(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(engine.Sat))

			model := e.CurrentModel()
			Expect(model[a1]).To(BeTrue())
			Expect(fired).To(Equal(1))
		})

		It("never invokes a residual whose trigger value never holds", func() {
			a1 := e.CreateVar()
			Expect(e.AddClause([]lit.Literal{lit.Neg(a1)})).To(Succeed())

			fired := 0
			Expect(e.RegisterLazyResidual(a1, engine.ValueTrue, func(_ *engine.Engine) error {
				fired++
				return nil
			})).To(Succeed())

			outcome, err := e.Solve(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(engine.Sat))

			model := e.CurrentModel()
			Expect(model[a1]).To(BeFalse())
			Expect(fired).To(Equal(0))
		})

		It("fires immediately on whichever value is decided first when ExpandLazyImmediately is set", func() {
			lazy, err := engine.New(engine.WithExpandLazyImmediately(true))
			Expect(err).NotTo(HaveOccurred())

			a1 := lazy.CreateVar()
			Expect(lazy.AddClause([]lit.Literal{lit.Neg(a1)})).To(Succeed())

			fired := 0
			Expect(lazy.RegisterLazyResidual(a1, engine.ValueTrue, func(_ *engine.Engine) error {
				fired++
				return nil
			})).To(Succeed())

			outcome, err := lazy.Solve(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(engine.Sat))
			Expect(fired).To(Equal(1))
		})
	})

	Context("construction guards", func() {
		It("rejects mutation after finish_parsing", func() {
			Expect(e.FinishParsing()).To(Succeed())
			Expect(e.FinishParsing()).To(HaveOccurred())
			Expect(e.AddClause(nil)).To(HaveOccurred())
		})
	})
})
