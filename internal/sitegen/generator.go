package sitegen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/pridano/internal/core"
	"github.com/tensorplex-labs/pridano/internal/modelapi"
	"github.com/tensorplex-labs/pridano/internal/runstore"
	"github.com/tensorplex-labs/pridano/internal/scoring"
)

const (
	MinVariants     = 1
	MaxVariants     = 5
	DefaultVariants = 1
)

// GenerateResult is returned to the caller of /generate.
type GenerateResult struct {
	SavedAt          string         `json:"saved_at"`
	Best             core.Variant   `json:"best"`
	Variants         []core.Variant `json:"variants"`
	NormalizedScores []float64      `json:"normalized_scores"`
	Log              []string       `json:"log"`
	Run              core.Run       `json:"-"`
}

// Generator produces candidate file sets, ranks them and saves the best one.
type Generator struct {
	store        *runstore.Store
	index        runstore.Index
	scorer       scoring.Scorer
	client       modelapi.Client
	defaultModel string
	timeout      time.Duration
	policy       Policy
	now          func() time.Time
}

type GeneratorOption func(*Generator)

// WithModelClient enables the model path. defaultModel is used when a brief
// names no model.
func WithModelClient(client modelapi.Client, defaultModel string) GeneratorOption {
	return func(g *Generator) {
		g.client = client
		g.defaultModel = defaultModel
	}
}

func WithRunIndex(index runstore.Index) GeneratorOption {
	return func(g *Generator) {
		g.index = index
	}
}

func WithGeneratorPolicy(p Policy) GeneratorOption {
	return func(g *Generator) {
		g.policy = p
	}
}

func WithGenerateTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.timeout = d
	}
}

func WithNow(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

func NewGenerator(store *runstore.Store, scorer scoring.Scorer, opts ...GeneratorOption) *Generator {
	g := &Generator{
		store:  store,
		scorer: scorer,
		policy: DefaultPolicy(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds n candidates for b, scores them with scorer (the
// generator's own scorer when nil), saves the best one and returns every
// variant.
func (g *Generator) Generate(ctx context.Context, b core.Brief, n int, scorer scoring.Scorer) (*GenerateResult, error) {
	if n < MinVariants || n > MaxVariants {
		return nil, fmt.Errorf("%w: n must be between %d and %d, got %d", ErrInvalidVariantCount, MinVariants, MaxVariants, n)
	}
	if scorer == nil {
		scorer = g.scorer
	}

	var (
		candidates []scoring.Candidate
		lines      []string
		err        error
	)
	model := g.modelFor(b)
	if model != "" {
		candidates, lines, err = g.modelCandidates(ctx, b, model, n)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			if !g.policy.FallbackToDeterministic {
				return nil, fmt.Errorf("%w: every model variant failed", ErrNoVariants)
			}
			lines = append(lines, "ℹ No model variant succeeded, assembler used.")
			candidates = assembledCandidates(b, n)
		}
	} else {
		candidates = assembledCandidates(b, n)
		lines = append(lines, fmt.Sprintf("✔ %d variant(s) assembled from the brief", n))
	}

	variants := scoring.ScoreAll(scorer, candidates)
	best, idx, ok := scoring.SelectBest(variants)
	if !ok {
		return nil, ErrNoVariants
	}
	if strings.TrimSpace(best.Files.Index()) == "" {
		return nil, ErrEmptyIndex
	}

	run, err := g.store.SaveNew(Slugify(b.ProjectName), g.now(), best.Files)
	if err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}
	run.ProjectName = b.ProjectName
	run.Score = best.Score
	g.recordRun(ctx, run)

	lines = append(lines, fmt.Sprintf("✔ Best variant #%d (%s, score %.3f) saved to %s", idx+1, best.Source, best.Score, run.Path))

	return &GenerateResult{
		SavedAt:          run.Path,
		Best:             best,
		Variants:         variants,
		NormalizedScores: scoring.Normalize(scoring.Scores(variants)),
		Log:              lines,
		Run:              run,
	}, nil
}

func (g *Generator) modelFor(b core.Brief) string {
	if g.client == nil {
		return ""
	}
	if m := strings.TrimSpace(b.Model); m != "" {
		return m
	}
	return g.defaultModel
}

func (g *Generator) modelCandidates(ctx context.Context, b core.Brief, model string, n int) ([]scoring.Candidate, []string, error) {
	var (
		candidates []scoring.Candidate
		lines      []string
	)
	for i := 1; i <= n; i++ {
		files, err := g.modelVariant(ctx, b, model, i, n)
		if err == nil {
			candidates = append(candidates, scoring.Candidate{Files: files, Source: core.SourceModel})
			lines = append(lines, fmt.Sprintf("✔ Variant %d/%d generated by %s", i, n, model))
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, fmt.Errorf("generation cancelled: %w", ctxErr)
		}

		log.Warn().Err(err).Int("variant", i).Str("model", model).Msg("model variant failed")
		lines = append(lines, fmt.Sprintf("✖ Variant %d/%d failed: %v", i, n, err))
		if !g.policy.SkipFailedVariants {
			return nil, nil, fmt.Errorf("variant %d: %w", i, err)
		}
	}
	return candidates, lines, nil
}

func (g *Generator) modelVariant(ctx context.Context, b core.Brief, model string, i, n int) (core.FileSet, error) {
	req := modelapi.Request{
		Model:   model,
		System:  modelapi.SiteSystemPrompt,
		Prompt:  modelapi.BuildSitePrompt(b, i, n),
		Timeout: g.timeout,
	}

	var lastErr error
	for attempt := 1; attempt <= g.policy.attempts(); attempt++ {
		text, err := g.client.Generate(ctx, req)
		if err == nil {
			var files core.FileSet
			files, err = modelapi.ExtractFileSet(text)
			if err == nil {
				return files, nil
			}
		}
		lastErr = err
		if ctx.Err() != nil || errors.Is(err, modelapi.ErrNotConfigured) {
			break
		}
		log.Debug().Err(err).Int("variant", i).Int("attempt", attempt).Msg("retrying model variant")
	}
	return nil, lastErr
}

func (g *Generator) recordRun(ctx context.Context, run core.Run) {
	if g.index == nil {
		return
	}
	if err := g.index.Record(ctx, run); err != nil {
		log.Warn().Err(err).Str("run", run.Name).Msg("failed to record run in index")
	}
}

func assembledCandidates(b core.Brief, n int) []scoring.Candidate {
	files := Assemble(b)
	candidates := make([]scoring.Candidate, n)
	for i := range candidates {
		candidates[i] = scoring.Candidate{Files: files, Source: core.SourceAssembler}
	}
	return candidates
}
