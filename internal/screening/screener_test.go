package screening

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/vocabulary"
)

const jobDescription = "Python developer with Django and PostgreSQL, building REST APIs."

func testVocabulary(t *testing.T) *vocabulary.Vocabulary {
	t.Helper()

	v, err := vocabulary.New(vocabulary.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

func testCorpus() []Document {
	return []Document{
		NewDocument("gardener.txt", "Tom Green\nGardening, flowers and compost."),
		NewDocument("jane.txt", "Name: Jane Q. Public\nEmail: jane@example.com\nPython developer, Django and PostgreSQL, REST APIs."),
		NewDocument("empty.txt", ""),
		NewDocument("john.txt", "John Smith\nJava developer building REST APIs with Spring."),
	}
}

type countingRecorder struct {
	mu        sync.Mutex
	decoded   int
	failed    int
	extracted int
	ranked    int
}

func (r *countingRecorder) DocumentDecoded() { r.mu.Lock(); r.decoded++; r.mu.Unlock() }
func (r *countingRecorder) DocumentFailed()  { r.mu.Lock(); r.failed++; r.mu.Unlock() }
func (r *countingRecorder) ObserveExtraction(time.Duration) {
	r.mu.Lock()
	r.extracted++
	r.mu.Unlock()
}
func (r *countingRecorder) CandidatesRanked(n int) { r.mu.Lock(); r.ranked += n; r.mu.Unlock() }

func TestNewDocument(t *testing.T) {
	t.Parallel()

	doc := NewDocument("a", "  Jane\n\tDoe ")
	if doc.RawText != "  Jane\n\tDoe " || doc.CleanedText != "Jane Doe" {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestScreenRanksCorpus(t *testing.T) {
	t.Parallel()

	recorder := &countingRecorder{}
	s := New(testVocabulary(t),
		WithWorkers(2),
		WithNER(false),
		WithMetrics(recorder),
		WithRequiredSkills([]string{"python", "django", "docker"}),
	)

	got, err := s.Screen(context.Background(), testCorpus(), jobDescription)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := make([]string, len(got))
	for i, c := range got {
		ids[i] = c.ID
	}
	expect := []string{"jane.txt", "john.txt", "gardener.txt", "empty.txt"}
	if !slices.Equal(ids, expect) {
		t.Fatalf("expected order %v, got %v", expect, ids)
	}

	for i := 1; i < len(got); i++ {
		if got[i].Similarity > got[i-1].Similarity {
			t.Fatalf("ranking is not non-increasing: %+v", got)
		}
	}

	jane := got[0]
	if jane.Name != "Jane Q. Public" || jane.Email != "jane@example.com" {
		t.Fatalf("unexpected attributes: %+v", jane)
	}
	if jane.SkillsMatch != 66.67 {
		t.Fatalf("expected skills match 66.67, got %v", jane.SkillsMatch)
	}

	empty := got[3]
	if empty.Similarity != 0 || len(empty.Skills) != len(testVocabulary(t).Categories()) {
		t.Fatalf("empty document must score 0 with every category present: %+v", empty)
	}

	if recorder.extracted != 4 || recorder.ranked != 4 {
		t.Fatalf("unexpected metrics: %+v", recorder)
	}
}

func TestScreenEmptyCorpus(t *testing.T) {
	t.Parallel()

	got, err := New(testVocabulary(t)).Screen(context.Background(), nil, jobDescription)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %v", got)
	}
}

func TestScreenCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testVocabulary(t)).Screen(ctx, testCorpus(), jobDescription)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScreenRecoversExtractionPanic(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	s := New(testVocabulary(t), WithLogger(zap.New(core)), WithNER(false))
	s.extractor = func(text string, vocab *vocabulary.Vocabulary, opts extract.Options) extract.Result {
		if text == "" {
			panic("broken document")
		}
		return extract.Extract(text, vocab, opts)
	}

	got, err := s.Screen(context.Background(), testCorpus(), jobDescription)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 || got[3].ID != "empty.txt" {
		t.Fatalf("the failing document must still be ranked: %+v", got)
	}
	if got[3].Skills == nil {
		t.Fatalf("expected empty skills for the failing document")
	}

	if logs.FilterMessage("extraction failed, ranking document without attributes").Len() != 1 {
		t.Fatalf("expected one warning, got %v", logs.All())
	}
}

type stubDecoder map[string]string

func (d stubDecoder) Decode(_ context.Context, path string) (string, error) {
	text, ok := d[path]
	if !ok {
		return "", fmt.Errorf("open %s: no such file", path)
	}
	if text == "binary" {
		return "", &DecodeFailure{Path: path, Err: ErrUnsupportedFormat}
	}
	return text, nil
}

func TestScreenSourcesExcludesFailures(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	recorder := &countingRecorder{}
	s := New(testVocabulary(t), WithLogger(zap.New(core)), WithMetrics(recorder), WithNER(false))

	decoder := stubDecoder{
		"a.txt": "Python developer with Django",
		"b.bin": "binary",
		"c.txt": "Java developer",
	}

	sources := []Source{
		{ID: "a", Path: "a.txt"},
		{ID: "b", Path: "b.bin"},
		{ID: "c", Path: "c.txt"},
		{ID: "d", Path: "missing"},
	}

	outcome, err := s.ScreenSources(context.Background(), sources, decoder, jobDescription)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(outcome.Candidates) != 2 || outcome.Candidates[0].ID != "a" || outcome.Candidates[1].ID != "c" {
		t.Fatalf("unexpected candidates: %+v", outcome.Candidates)
	}

	if len(outcome.Failures) != 2 || outcome.Failures[0].Path != "b.bin" || outcome.Failures[1].Path != "missing" {
		t.Fatalf("unexpected failures: %+v", outcome.Failures)
	}
	if !errors.Is(outcome.Failures[0], ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format failure, got %v", outcome.Failures[0])
	}

	if logs.FilterMessage("skipping document that could not be decoded").Len() != 2 {
		t.Fatalf("expected two warnings, got %v", logs.All())
	}
	if recorder.decoded != 2 || recorder.failed != 2 {
		t.Fatalf("unexpected metrics: %+v", recorder)
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	if got := (ScoredCandidate{ID: "cv.pdf"}).DisplayName(); got != "cv.pdf" {
		t.Fatalf("expected the id, got %q", got)
	}
	if got := (ScoredCandidate{ID: "cv.pdf", Name: "Jane Doe"}).DisplayName(); got != "Jane Doe" {
		t.Fatalf("expected the name, got %q", got)
	}
}
