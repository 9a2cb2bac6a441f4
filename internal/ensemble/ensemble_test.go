package ensemble_test

import (
	"context"
	"errors"
	"image"
	"math"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/ensemble"
	"github.com/san-kum/lagrange/internal/integrators"
	"github.com/san-kum/lagrange/internal/kinematics"
	"github.com/san-kum/lagrange/internal/physics"
	"github.com/san-kum/lagrange/internal/render"
)

// recorder is an encoder that only remembers the indices it was given. When
// failAt is positive, Add fails at that index.
type recorder struct {
	indices []int
	failAt  int
	closed  bool
	aborted bool
}

var errRecorder = errors.New("recorder full")

func (r *recorder) Add(index int, img image.Image) error {
	if r.failAt > 0 && index == r.failAt {
		return errRecorder
	}
	r.indices = append(r.indices, index)
	return nil
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func (r *recorder) Abort() error {
	r.aborted = true
	return nil
}

var _ = Describe("Ensemble", func() {
	var (
		ctx    context.Context
		sys    *physics.DoublePendulum
		mapper kinematics.DoublePendulumMapper
		span   dynamo.Span
	)

	BeforeEach(func() {
		ctx = context.Background()
		sys = physics.NewDoublePendulum()
		mapper = kinematics.DoublePendulumMapper{L1: 1, L2: 1}
		span = dynamo.Span{Start: 0, End: 1}
	})

	Describe("Perturb", func() {
		It("offsets one component by delta·i/n", func() {
			base := dynamo.State{math.Pi / 3, 0, math.Pi / 2, 0}
			xs := ensemble.Perturb(base, 2, 0.3, 3)

			Expect(xs).To(HaveLen(3))
			Expect(xs[0]).To(Equal(base))
			Expect(xs[1][2]).To(BeNumerically("~", math.Pi/2+0.1, 1e-15))
			Expect(xs[2][2]).To(BeNumerically("~", math.Pi/2+0.2, 1e-15))
			Expect(xs[2][0]).To(Equal(base[0]))
		})
	})

	Context("with three members", func() {
		var ens *ensemble.Ensemble

		BeforeEach(func() {
			var err error
			initials := ensemble.Perturb(sys.DefaultState(), 2, 0.01, 3)
			ens, err = ensemble.New(sys, mapper, initials, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ens.Simulate(ctx, span, 31, integrators.DefaultOptions(), 2)).To(Succeed())
		})

		It("gives every member the same time column and sample count", func() {
			Expect(ens.Len()).To(Equal(3))
			Expect(ens.Samples()).To(Equal(31))

			ref := ens.Member(0).Trajectory.Times()
			for i := 1; i < ens.Len(); i++ {
				Expect(ens.Member(i).Trajectory.Times()).To(Equal(ref))
				Expect(ens.Member(i).Trajectory.Len()).To(Equal(31))
			}
		})

		It("matches a member integrated on its own", func() {
			m := ens.Member(2)
			solo, err := integrators.Integrate(ctx, sys, span, m.Initial, 31, integrators.DefaultOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Trajectory.State(30)).To(Equal(solo.State(30)))
		})

		It("keys visual state by member index", func() {
			frame, err := ens.Frame(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(frame).To(HaveLen(3))
			for i, vs := range frame {
				Expect(vs.Index).To(Equal(i))
				want := mapper.Map(ens.Member(i).Trajectory.State(10), ens.Member(i).Trajectory.Time(10))
				Expect(vs.Config).To(Equal(want))
			}
			Expect(frame[0].Color).NotTo(Equal(frame[2].Color))
		})

		It("rejects frames outside the sample range", func() {
			_, err := ens.Frame(31)
			Expect(err).To(HaveOccurred())
			_, err = ens.Frame(-1)
			Expect(err).To(HaveOccurred())
		})

		It("emits frames 0..n-1 in order and closes the encoder", func() {
			scene, err := ens.Scene(64, 0.1)
			Expect(err).NotTo(HaveOccurred())

			rec := &recorder{}
			Expect(ens.Render(ctx, scene, rec, nil)).To(Succeed())
			Expect(rec.closed).To(BeTrue())
			Expect(rec.aborted).To(BeFalse())
			Expect(rec.indices).To(HaveLen(31))
			for i, idx := range rec.indices {
				Expect(idx).To(Equal(i))
			}
		})

		It("aborts the encoder when a frame cannot be added", func() {
			scene, err := ens.Scene(64, 0.1)
			Expect(err).NotTo(HaveOccurred())

			rec := &recorder{failAt: 4}
			Expect(ens.Render(ctx, scene, rec, nil)).To(MatchError(errRecorder))
			Expect(rec.aborted).To(BeTrue())
			Expect(rec.closed).To(BeFalse())
			Expect(rec.indices).To(Equal([]int{0, 1, 2, 3}))
		})

		It("leaves no frames behind when canceled mid-render", func() {
			scene, err := ens.Scene(64, 0.1)
			Expect(err).NotTo(HaveOccurred())

			dir := GinkgoT().TempDir()
			enc, err := render.NewPNGSequence(filepath.Join(dir, "frames"))
			Expect(err).NotTo(HaveOccurred())

			cctx, cancel := context.WithCancel(ctx)
			defer cancel()
			err = ens.Render(cctx, scene, enc, func(i int) {
				if i == 2 {
					cancel()
				}
			})
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())

			entries, err := os.ReadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})

		It("writes a composite GIF", func() {
			scene, err := ens.Scene(64, 0.1)
			Expect(err).NotTo(HaveOccurred())

			path := filepath.Join(GinkgoT().TempDir(), "ensemble.gif")
			enc, err := render.NewGIFEncoder(path, 30)
			Expect(err).NotTo(HaveOccurred())
			Expect(ens.Render(ctx, scene, enc, nil)).To(Succeed())
			Expect(path).To(BeAnExistingFile())
		})
	})

	It("refuses to render before simulating", func() {
		ens, err := ensemble.New(sys, mapper, []dynamo.State{sys.DefaultState()}, render.Rainbow)
		Expect(err).NotTo(HaveOccurred())

		_, err = ens.Frame(0)
		Expect(err).To(MatchError(ensemble.ErrNotSimulated))
		rec := &recorder{}
		Expect(ens.Render(ctx, render.Scene{}, rec, nil)).To(MatchError(ensemble.ErrNotSimulated))
		Expect(rec.aborted).To(BeTrue())
	})

	It("fails as a whole when one member fails", func() {
		initials := []dynamo.State{sys.DefaultState(), {math.NaN(), 0, 0, 0}, sys.DefaultState()}
		ens, err := ensemble.New(sys, mapper, initials, nil)
		Expect(err).NotTo(HaveOccurred())

		err = ens.Simulate(ctx, span, 11, integrators.DefaultOptions(), 0)
		Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
		Expect(ens.Samples()).To(BeZero())
		Expect(ens.Member(0).Trajectory).To(BeNil())
	})

	It("requires at least one member", func() {
		_, err := ensemble.New(sys, mapper, nil, nil)
		Expect(err).To(MatchError(ensemble.ErrEmpty))
	})
})
