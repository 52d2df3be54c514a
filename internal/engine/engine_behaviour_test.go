package engine_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/engine"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/series"
)

var _ = Describe("Engine", func() {
	var (
		eng     *engine.Engine
		sched   *engine.Manual
		samples *series.Log
	)

	BeforeEach(func() {
		sched = engine.NewManual()
		samples = series.New()
		eng = engine.New(physics.NewMassSpringDamper(), samples, sched)
		Expect(eng.Reset(dynamo.Params{"m": 1, "k": 20, "x0": 0.2})).To(Succeed())
	})

	It("starts paused", func() {
		Expect(eng.State()).To(Equal(engine.Paused))
		Expect(sched.Active()).To(BeFalse())
	})

	Describe("Start and Pause", func() {
		It("moves between the two states", func() {
			eng.Start()
			Expect(eng.State()).To(Equal(engine.Running))
			Expect(sched.Active()).To(BeTrue())

			eng.Pause()
			Expect(eng.State()).To(Equal(engine.Paused))
			Expect(sched.Active()).To(BeFalse())
		})

		It("logs one sample per fired tick", func() {
			eng.Start()
			Expect(sched.FireN(25)).To(Equal(25))
			Expect(samples.Count()).To(Equal(26))
		})
	})

	Describe("StepOnce", func() {
		It("advances exactly one step while paused", func() {
			eng.SetStepSize(0.01)
			Expect(eng.StepOnce()).To(BeTrue())
			Expect(samples.Count()).To(Equal(2))
			Expect(eng.Snapshot().Time).To(BeNumerically("~", 0.01, 1e-12))
			Expect(eng.Snapshot().Displacement).To(BeNumerically("~", 0.1996, 1e-12))
		})

		It("is ignored while running", func() {
			eng.Start()
			Expect(eng.StepOnce()).To(BeFalse())
			Expect(samples.Count()).To(Equal(1))
		})
	})

	Describe("Reset", func() {
		It("propagates the model error unchanged", func() {
			err := eng.Reset(dynamo.Params{"k": 20})
			Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue())

			var pe *dynamo.ParameterError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Key).To(Equal("m"))
			Expect(pe.Missing).To(BeTrue())
		})

		It("clears the log and records t=0", func() {
			eng.Start()
			sched.FireN(10)
			Expect(eng.Reset(dynamo.Params{"m": 1, "k": 20})).To(Succeed())
			Expect(samples.Count()).To(Equal(1))
			Expect(eng.Snapshot().Time).To(BeZero())
		})
	})

	Context("with a wall-clock ticker", func() {
		var ticker *engine.Ticker

		BeforeEach(func() {
			ticker = engine.NewTicker(time.Millisecond)
			samples = series.New()
			eng = engine.New(physics.NewMassSpringDamper(), samples, ticker)
			Expect(eng.Reset(dynamo.Params{"m": 1, "k": 20})).To(Succeed())
		})

		AfterEach(func() {
			eng.Pause()
		})

		It("ticks until paused", func() {
			eng.Start()
			Eventually(eng.Count).Should(BeNumerically(">", 5))

			eng.Pause()
			n := eng.Count()
			Consistently(eng.Count, 50*time.Millisecond, 5*time.Millisecond).Should(Equal(n))
		})

		It("pauses itself at the step limit", func() {
			eng.SetStepLimit(20)
			eng.Start()
			Eventually(eng.State).Should(Equal(engine.Paused))
			Expect(eng.Count()).To(Equal(21))
			Consistently(eng.Count, 30*time.Millisecond, 5*time.Millisecond).Should(Equal(21))
		})

		It("serves snapshots while ticking", func() {
			eng.Start()
			Eventually(func() float64 { return eng.Snapshot().Time }).Should(BeNumerically(">", 0))
		})
	})
})
