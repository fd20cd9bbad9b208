package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaosynth/internal/config"
	"github.com/san-kum/chaosynth/internal/mapping"
	"github.com/san-kum/chaosynth/internal/pipeline"
	"github.com/san-kum/chaosynth/internal/playback"
)

type failingEngine struct{ playback.Recorder }

func (f *failingEngine) Play(context.Context, *playback.Pattern) error {
	return errors.New("device unplugged")
}

var _ = Describe("Run", func() {
	var (
		cfg    *config.Config
		rec    *playback.Recorder
		logger *slog.Logger
	)

	BeforeEach(func() {
		cfg = config.DefaultConfig()
		rec = playback.NewRecorder([]string{"sine", "square"})
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	})

	It("hands exactly one pattern to the engine", func() {
		res, err := pipeline.Run(context.Background(), cfg, rec, rand.New(rand.NewSource(1)), logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Patterns()).To(HaveLen(1))
		Expect(rec.Last()).To(BeIdenticalTo(res.Pattern))
	})

	It("keeps every series the length of the trajectory", func() {
		res, err := pipeline.Run(context.Background(), cfg, rec, rand.New(rand.NewSource(1)), logger)
		Expect(err).NotTo(HaveOccurred())

		n := cfg.Integration.Steps
		Expect(res.Trajectory.Len()).To(Equal(n))
		Expect(res.Features.Len()).To(Equal(n))
		Expect(res.Controls.Len()).To(Equal(n))
		Expect(res.Controls.Kick).To(HaveLen(n))
		Expect(res.Controls.Validate(cfg.Mapping)).To(Succeed())
	})

	It("picks the voice from the engine registry in preference order", func() {
		res, err := pipeline.Run(context.Background(), cfg, rec, nil, logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Pattern.Voice).To(Equal("square"))
		Expect(res.Pattern.BPM).To(Equal(config.DefaultBPM))
	})

	It("reproduces percussion for the same seed", func() {
		a, err := pipeline.Run(context.Background(), cfg, rec, rand.New(rand.NewSource(42)), logger)
		Expect(err).NotTo(HaveOccurred())
		b, err := pipeline.Run(context.Background(), cfg, rec, rand.New(rand.NewSource(42)), logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Controls).To(Equal(b.Controls))
	})

	It("yields an empty pattern for zero steps", func() {
		cfg.Integration.Steps = 0
		res, err := pipeline.Run(context.Background(), cfg, rec, nil, logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Trajectory).To(BeEmpty())
		Expect(res.Controls.Len()).To(BeZero())
	})

	It("neutralizes a diverging trajectory instead of failing", func() {
		cfg.Integration.Dt = 1.0
		cfg.Integration.Steps = 200
		res, err := pipeline.Run(context.Background(), cfg, rec, nil, logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Diverged).To(BeTrue())
		Expect(res.Controls.Validate(cfg.Mapping)).To(Succeed())
	})

	It("rejects invalid configuration before touching the engine", func() {
		cfg.Playback.BPM = -1
		_, err := pipeline.Run(context.Background(), cfg, rec, nil, logger)
		Expect(err).To(MatchError(config.ErrInvalid))
		Expect(rec.Patterns()).To(BeEmpty())
	})

	It("wraps engine failures", func() {
		_, err := pipeline.Run(context.Background(), cfg, &failingEngine{}, nil, logger)
		Expect(err).To(MatchError(ContainSubstring("device unplugged")))
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := pipeline.Run(ctx, cfg, rec, nil, logger)
		Expect(err).To(HaveOccurred())
		Expect(rec.Patterns()).To(BeEmpty())
	})

	It("renders a script through the script engine", func() {
		var buf bytes.Buffer
		engine, err := playback.New("script", &buf, []string{"sawtooth"})
		Expect(err).NotTo(HaveOccurred())

		_, err = pipeline.Run(context.Background(), cfg, engine, nil, logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring(`.s("sawtooth")`))
		Expect(buf.String()).To(ContainSubstring("setcps(0.5000)"))
	})
})

var _ = Describe("Compose", func() {
	It("maps controls without an engine", func() {
		cfg := config.DefaultConfig()
		res, err := pipeline.Compose(context.Background(), cfg, nil, nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Pattern.Voice).To(Equal(playback.DefaultVoices[0]))
		for _, n := range res.Controls.Notes {
			Expect(float64(n)).To(BeNumerically(">=", mapping.NoteBounds.Min))
			Expect(float64(n)).To(BeNumerically("<=", mapping.NoteBounds.Max))
		}
	})
})

var _ = Describe("Handoff", func() {
	var res *pipeline.Result

	BeforeEach(func() {
		var err error
		res, err = pipeline.Compose(context.Background(), config.DefaultConfig(), nil, nil, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	It("plays a composed result", func() {
		rec := playback.NewRecorder(nil)
		Expect(pipeline.Handoff(context.Background(), rec, res, nil)).To(Succeed())
		Expect(rec.Last()).To(BeIdenticalTo(res.Pattern))
	})

	It("reports a canceled context without playing", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		rec := playback.NewRecorder(nil)
		err := pipeline.Handoff(ctx, rec, res, nil)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(rec.Patterns()).To(BeEmpty())
	})
})
