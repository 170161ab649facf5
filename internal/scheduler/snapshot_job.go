package scheduler

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/healthecon/preventsim/internal/modules/runs"
)

// ModelRunner is the slice of the engine the snapshot job needs: one
// deterministic evaluation of the current model
type ModelRunner interface {
	Snapshot() (interface{}, error)
}

// SnapshotJob records a deterministic portfolio snapshot into run history
// and prunes old records
type SnapshotJob struct {
	runner ModelRunner
	repo   *runs.Repository
	keep   int
	log    zerolog.Logger
}

// NewSnapshotJob creates the snapshot job
func NewSnapshotJob(runner ModelRunner, repo *runs.Repository, keep int, log zerolog.Logger) *SnapshotJob {
	return &SnapshotJob{
		runner: runner,
		repo:   repo,
		keep:   keep,
		log:    log.With().Str("job", "snapshot").Logger(),
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "deterministic_snapshot"
}

// Run evaluates the model deterministically and persists the result
func (j *SnapshotJob) Run() error {
	result, err := j.runner.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot evaluation failed: %w", err)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	if _, err := j.repo.Insert(runs.KindSnapshot, 0, 0, string(payload)); err != nil {
		return err
	}

	if err := j.repo.Prune(j.keep); err != nil {
		j.log.Warn().Err(err).Msg("Failed to prune run history")
	}

	return nil
}
