package jobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/BaSui01/creativeflow/generation"
)

var (
	// ErrNotFound 作业快照不存在
	ErrNotFound = errors.New("jobstore: job not found")
	// ErrStatusRegression 新快照的状态早于已保存的状态
	ErrStatusRegression = errors.New("jobstore: status regression")
)

// Store persists job snapshots. Save overwrites the previous snapshot of the same id
// unless that would move the status backwards.
type Store interface {
	Save(ctx context.Context, job *generation.Job) error
	Get(ctx context.Context, id string) (*generation.Job, error)
}

func checkTransition(id string, from, to generation.JobStatus) error {
	if !generation.CanTransition(from, to) {
		return fmt.Errorf("%w: job %s %s -> %s", ErrStatusRegression, id, from, to)
	}
	return nil
}

func checkJob(job *generation.Job) error {
	if job == nil || job.ID == "" {
		return errors.New("jobstore: job id is required")
	}
	if !job.Status.Valid() {
		return fmt.Errorf("jobstore: job %s has unknown status %q", job.ID, job.Status)
	}
	return nil
}
