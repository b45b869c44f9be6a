package history_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/beamctl/internal/history"
)

var _ = Describe("Buffer", func() {
	const (
		window = 12.0
		hz     = 50.0
		dt     = 1.0 / hz
	)

	var buf *history.Buffer

	BeforeEach(func() {
		buf = history.New(window, hz)
	})

	It("is empty before any ticks occur", func() {
		Expect(buf.Visible(window)).To(BeEmpty())
		Expect(buf.Len()).To(BeZero())

		_, ok := buf.Latest()
		Expect(ok).To(BeFalse())
	})

	It("returns appended samples in time order", func() {
		for i := 1; i <= 5; i++ {
			buf.Append(history.Sample{T: float64(i) * dt, Position: float64(i)})
		}

		got := buf.Visible(window)
		Expect(got).To(HaveLen(5))
		for i := 1; i < len(got); i++ {
			Expect(got[i].T).To(BeNumerically(">", got[i-1].T))
		}
	})

	It("retains only samples inside the window over a 20s run", func() {
		var latest float64
		for i := 1; i <= int(20.0*hz); i++ {
			latest = float64(i) * dt
			buf.Append(history.Sample{T: latest, Setpoint: 0.1, Position: -0.2})
		}

		got := buf.Visible(window)
		Expect(got).NotTo(BeEmpty())
		for _, s := range got {
			Expect(s.T).To(BeNumerically(">=", latest-window))
		}
		// 12s at 50Hz, within the ring's slack
		Expect(len(got)).To(BeNumerically("~", int(window*hz), 4))
	})

	It("answers narrower window queries against the latest sample", func() {
		for i := 1; i <= int(10.0*hz); i++ {
			buf.Append(history.Sample{T: float64(i) * dt})
		}
		latest, ok := buf.Latest()
		Expect(ok).To(BeTrue())

		got := buf.Visible(2.0)
		for _, s := range got {
			Expect(s.T).To(BeNumerically(">=", latest.T-2.0))
		}
		Expect(len(got)).To(BeNumerically("~", int(2.0*hz), 2))
	})

	It("evicts lazily but never grows past its capacity", func() {
		for i := 1; i <= 100000; i++ {
			buf.Append(history.Sample{T: float64(i) * dt})
		}
		Expect(buf.Len()).To(BeNumerically("<=", int(window*hz)+4))
	})
})
