package delay_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"sysflow/internal/delay"
)

var _ = Describe("Material", func() {
	It("rejects non-positive delay times", func() {
		_, err := delay.NewMaterial("m", 0, 0, 3)
		Expect(err).To(MatchError(delay.ErrInvalidConfig))

		_, err = delay.NewMaterial("m", -2, 0, 3)
		Expect(err).To(MatchError(delay.ErrInvalidConfig))
	})

	It("clamps order below one", func() {
		m, err := delay.NewMaterial("m", 5, 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Order()).To(Equal(1))
	})

	It("starts at the configured output rate", func() {
		m, _ := delay.NewMaterial("m", 4, 2.5, 3)
		Expect(m.Output()).To(Equal(2.5))
		Expect(m.InTransit()).To(BeNumerically("~", 2.5*4, 1e-12))
	})

	It("reaches steady state equal to a constant input", func() {
		m, _ := delay.NewMaterial("m", 5, 0, 3)
		dt := 0.1
		var out float64
		for i := 0; i < 2000; i++ { // 200 time units >> delay time 5
			out = m.Update(10, dt)
		}
		Expect(out).To(BeNumerically("~", 10, 10*dt/5))
	})

	It("conserves mass at every step", func() {
		m, _ := delay.NewMaterial("m", 3, 0, 4)
		dt := 0.25

		cumIn, cumOut := 0.0, 0.0
		input := 0.0
		for i := 0; i < 400; i++ {
			// Irregular input: step up, then pulse down.
			switch {
			case i < 40:
				input = 0
			case i < 200:
				input = 8
			default:
				input = 3
			}
			out := m.Update(input, dt)
			cumIn += input * dt
			cumOut += out * dt
			Expect(cumIn - cumOut).To(BeNumerically("~", m.InTransit(), 1e-9))
		}
	})

	It("approaches a pure transport delay as order grows", func() {
		// Impulse response peak of an Nth-order material delay moves
		// toward t = delayTime as N rises.
		peakTime := func(order int) float64 {
			m, _ := delay.NewMaterial("m", 10, 0, order)
			dt := 0.01
			best, bestT := -1.0, 0.0
			input := 1 / dt // unit impulse in the first step
			for i := 0; i < 3000; i++ {
				out := m.Update(input, dt)
				input = 0
				if out > best {
					best = out
					bestT = float64(i) * dt
				}
			}
			return bestT
		}

		lo := peakTime(1)
		hi := peakTime(12)
		Expect(hi).To(BeNumerically(">", lo))
		Expect(hi).To(BeNumerically("~", 10, 2.0))
	})
})

var _ = Describe("Information", func() {
	It("rejects non-positive delay times", func() {
		_, err := delay.NewInformation("d", 0, 0, 1)
		Expect(err).To(MatchError(delay.ErrInvalidConfig))
	})

	It("holds a matching constant input exactly", func() {
		d, _ := delay.NewInformation("d", 3, 7, 2)
		for i := 0; i < 50; i++ {
			Expect(d.Update(7, 0.5)).To(Equal(7.0))
		}
	})

	It("approaches a step input monotonically without overshoot", func() {
		// Step from 0 to 10 at t=0, order 3, delay time 3.
		d, _ := delay.NewInformation("d", 3, 0, 3)
		dt := 0.1

		prev := 0.0
		var out float64
		for i := 0; i < 1000; i++ {
			out = d.Update(10, dt)
			Expect(out).To(BeNumerically(">=", prev))
			Expect(out).To(BeNumerically("<=", 10))
			prev = out
		}
		Expect(out).To(BeNumerically("~", 10, 0.01))
	})

	It("does not conserve its input", func() {
		d, _ := delay.NewInformation("d", 2, 0, 1)
		dt := 0.5
		cumIn, cumOut := 0.0, 0.0
		for i := 0; i < 8; i++ {
			out := d.Update(4, dt)
			cumIn += 4 * dt
			cumOut += out * dt
		}
		// A smoothing filter lags; early on the integrals differ by far
		// more than any in-transit quantity could explain.
		Expect(math.Abs(cumIn - cumOut)).To(BeNumerically(">", 1))
	})
})

var _ = Describe("Fixed", func() {
	It("rejects bad configuration", func() {
		_, err := delay.NewFixed("f", 0, 0, 1)
		Expect(err).To(MatchError(delay.ErrInvalidConfig))

		_, err = delay.NewFixed("f", 5, 0, 0)
		Expect(err).To(MatchError(delay.ErrInvalidConfig))
	})

	It("reproduces a step input exactly after the delay time", func() {
		d, _ := delay.NewFixed("f", 2, 0, 0.5) // 4 steps of lag
		dt := 0.5

		outs := []float64{}
		for i := 0; i < 8; i++ {
			outs = append(outs, d.Update(10, dt))
		}
		// Steps at t=0,0.5,1.0,1.5 still see the initial value.
		Expect(outs[:4]).To(Equal([]float64{0, 0, 0, 0}))
		// The step at t=2.0 sees the input from t=0.
		Expect(outs[4]).To(Equal(10.0))
		Expect(outs[7]).To(Equal(10.0))
	})

	It("transports an arbitrary signal unchanged", func() {
		d, _ := delay.NewFixed("f", 3, -1, 1)
		dt := 1.0

		signal := []float64{5, 1, 4, 1, 5, 9, 2, 6}
		var outs []float64
		for _, in := range signal {
			outs = append(outs, d.Update(in, dt))
		}
		Expect(outs).To(Equal([]float64{-1, -1, -1, 5, 1, 4, 1, 5}))
	})

	It("rounds non-divisible delay times up to whole steps", func() {
		d, _ := delay.NewFixed("f", 1.2, 0, 0.5) // ceil(2.4)=3 steps of lag
		dt := 0.5

		var outs []float64
		for i := 0; i < 5; i++ {
			outs = append(outs, d.Update(float64(i+1), dt))
		}
		Expect(outs).To(Equal([]float64{0, 0, 0, 1, 2}))
	})
})
