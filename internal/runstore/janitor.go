package runstore

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/pridano/internal/core"
)

const staleStagingAge = time.Hour

// RetentionPolicy bounds the runs kept on disk. A zero field disables that
// bound.
type RetentionPolicy struct {
	MaxAge  time.Duration
	MaxRuns int
}

func (p RetentionPolicy) Enabled() bool {
	return p.MaxAge > 0 || p.MaxRuns > 0
}

// Expired selects the runs outside the policy. runs must be newest first: a
// run is expired when it is older than MaxAge or when MaxRuns newer runs
// exist.
func (p RetentionPolicy) Expired(runs []core.Run, now time.Time) []core.Run {
	var out []core.Run
	for i, run := range runs {
		tooOld := p.MaxAge > 0 && now.Sub(run.CreatedAt) > p.MaxAge
		tooMany := p.MaxRuns > 0 && i >= p.MaxRuns
		if tooOld || tooMany {
			out = append(out, run)
		}
	}
	return out
}

// Janitor deletes runs that fall outside a RetentionPolicy.
type Janitor struct {
	store  *Store
	index  Index
	policy RetentionPolicy
	now    func() time.Time
	cron   *cron.Cron
}

type JanitorOption func(*Janitor)

// WithIndex removes swept runs from index as well.
func WithIndex(index Index) JanitorOption {
	return func(j *Janitor) {
		j.index = index
	}
}

func WithClock(now func() time.Time) JanitorOption {
	return func(j *Janitor) {
		j.now = now
	}
}

func NewJanitor(store *Store, policy RetentionPolicy, opts ...JanitorOption) *Janitor {
	j := &Janitor{store: store, policy: policy, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Sweep deletes the runs the policy expires and returns their names.
func (j *Janitor) Sweep(ctx context.Context) ([]string, error) {
	now := j.now()
	if n := j.store.removeStaleStaging(now.Add(-staleStagingAge)); n > 0 {
		log.Info().Int("count", n).Msg("removed stale staging directories")
	}
	if !j.policy.Enabled() {
		return nil, nil
	}

	runs, err := j.store.List()
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, run := range j.policy.Expired(runs, now) {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := j.store.Delete(run.Name); err != nil {
			log.Error().Err(err).Str("run", run.Name).Msg("failed to delete expired run")
			continue
		}
		removed = append(removed, run.Name)
	}

	if j.index != nil && len(removed) > 0 {
		if err := j.index.Remove(ctx, removed...); err != nil {
			log.Warn().Err(err).Msg("failed to remove expired runs from index")
		}
	}
	if len(removed) > 0 {
		log.Info().Int("count", len(removed)).Msg("✔ Expired runs deleted")
	}
	return removed, nil
}

// Start runs Sweep on schedule, a standard cron expression or descriptor such
// as "@hourly".
func (j *Janitor) Start(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if _, err := j.Sweep(ctx); err != nil {
			log.Error().Err(err).Msg("retention sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule retention %q: %w", schedule, err)
	}
	j.cron = c
	c.Start()
	log.Info().Str("schedule", schedule).Dur("max_age", j.policy.MaxAge).Int("max_runs", j.policy.MaxRuns).Msg("retention janitor started")
	return nil
}

// Stop halts the schedule and waits for a running sweep.
func (j *Janitor) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}
