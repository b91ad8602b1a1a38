package screening

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/similarity"
	"github.com/spigell/resume-screener/internal/textnorm"
	"github.com/spigell/resume-screener/internal/vocabulary"
)

// Recorder receives run metrics. The zero Screener uses a no-op recorder.
type Recorder interface {
	DocumentDecoded()
	DocumentFailed()
	ObserveExtraction(d time.Duration)
	CandidatesRanked(n int)
}

type nopRecorder struct{}

func (nopRecorder) DocumentDecoded()                {}
func (nopRecorder) DocumentFailed()                 {}
func (nopRecorder) ObserveExtraction(time.Duration) {}
func (nopRecorder) CandidatesRanked(int)            {}

// Screener ranks documents against a job description. It is safe for
// concurrent use once built.
type Screener struct {
	vocab    *vocabulary.Vocabulary
	stop     textnorm.StopWords
	logger   *zap.Logger
	metrics  Recorder
	workers  int
	required []string
	ner      bool

	extractor func(text string, vocab *vocabulary.Vocabulary, opts extract.Options) extract.Result
}

type Option func(*Screener)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Screener) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorkers bounds the number of documents extracted at the same time.
func WithWorkers(n int) Option {
	return func(s *Screener) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithMetrics(r Recorder) Option {
	return func(s *Screener) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithRequiredSkills sets the skills SkillsMatch is computed against.
func WithRequiredSkills(skills []string) Option {
	return func(s *Screener) {
		s.required = append([]string(nil), skills...)
	}
}

// WithNER toggles the entity recognition fallback for names.
func WithNER(enabled bool) Option {
	return func(s *Screener) {
		s.ner = enabled
	}
}

func New(vocab *vocabulary.Vocabulary, opts ...Option) *Screener {
	s := &Screener{
		vocab:   vocab,
		stop:    textnorm.English(),
		logger:  zap.NewNop(),
		metrics: nopRecorder{},
		workers: runtime.GOMAXPROCS(0),
		ner:     true,

		extractor: extract.Extract,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Screen extracts every document in parallel, scores the whole corpus against
// the reference in one batch and returns the candidates ordered by similarity.
// It fails only when ctx is done.
func (s *Screener) Screen(ctx context.Context, corpus []Document, reference string) ([]ScoredCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]extract.Result, len(corpus))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, doc := range corpus {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.extract(doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extracting attributes: %w", err)
	}

	texts := make([]string, len(corpus))
	for i, doc := range corpus {
		texts[i] = doc.CleanedText
	}

	ranked := similarity.Rank(texts, reference, s.stop)
	if degenerate(ranked) {
		s.logger.Debug("no shared vocabulary with the job description, all similarities are 0",
			zap.Int("documents", len(corpus)),
		)
	}

	candidates := make([]ScoredCandidate, len(ranked))
	for k, r := range ranked {
		candidates[k] = newCandidate(corpus[r.Index], results[r.Index], r.Similarity, s.required)
	}

	s.metrics.CandidatesRanked(len(candidates))
	s.logger.Info("documents screened", zap.Int("candidates", len(candidates)))

	return candidates, nil
}

// ScreenSources decodes the sources and screens the ones that decoded. Decode
// failures are reported in the outcome, not ranked.
func (s *Screener) ScreenSources(ctx context.Context, sources []Source, decoder Decoder, reference string) (*Outcome, error) {
	texts := make([]string, len(sources))
	failures := make([]*DecodeFailure, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, src := range sources {
		g.Go(func() error {
			text, err := decoder.Decode(gctx, src.Path)
			if err == nil {
				texts[i] = text
				return nil
			}
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}

			var failure *DecodeFailure
			if !errors.As(err, &failure) {
				failure = &DecodeFailure{Path: src.Path, Err: err}
			}
			failures[i] = failure
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}

	outcome := &Outcome{}
	corpus := make([]Document, 0, len(sources))
	for i, src := range sources {
		if failure := failures[i]; failure != nil {
			s.logger.Warn("skipping document that could not be decoded",
				zap.String("path", failure.Path),
				zap.Error(failure.Err),
			)
			s.metrics.DocumentFailed()
			outcome.Failures = append(outcome.Failures, failure)
			continue
		}
		s.metrics.DocumentDecoded()
		corpus = append(corpus, NewDocument(src.ID, texts[i]))
	}

	candidates, err := s.Screen(ctx, corpus, reference)
	if err != nil {
		return nil, err
	}
	outcome.Candidates = candidates

	return outcome, nil
}

// extract never panics; a failing document gets an empty result and is still ranked.
func (s *Screener) extract(doc Document) (result extract.Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("extraction failed, ranking document without attributes",
				zap.String("document", doc.ID),
				zap.Any("panic", r),
			)
			result = extract.Result{Skills: extract.FindSkills("", s.vocab)}
		}
		s.metrics.ObserveExtraction(time.Since(start))
	}()

	return s.extractor(doc.RawText, s.vocab, extract.Options{DisableNER: !s.ner})
}

func degenerate(ranked []similarity.Ranked) bool {
	if len(ranked) == 0 {
		return false
	}
	// sorted descending, so the first entry is the maximum
	return ranked[0].Similarity == 0
}
