package pipeline

import (
	"context"
	"sync"

	"github.com/meshfab/unfold/internal/solver"
)

// Job is one independent mesh to unfold in a batch run.
type Job struct {
	Name      string
	Vertices  [][3]float64
	Triangles [][3]int
	Pins      []solver.Constraint
	Folds     []FoldSpec
}

// JobResult pairs a job with its outcome. Err is set per job; one failing
// mesh does not abort the others.
type JobResult struct {
	Name   string
	Result *Result
	Err    error
}

// Batch unfolds independent meshes concurrently on a bounded worker pool.
// The core holds no shared mutable state, so jobs need no synchronization
// beyond the result slots. Results come back in job order.
func (u *Unfolder) Batch(ctx context.Context, jobs []Job, workers int) []JobResult {
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	results := make([]JobResult, len(jobs))
	idx := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				job := jobs[i]
				res, err := u.Unfold(ctx, job.Vertices, job.Triangles, job.Pins, job.Folds)
				results[i] = JobResult{Name: job.Name, Result: res, Err: err}
			}
		}()
	}

	for i := range jobs {
		select {
		case idx <- i:
		case <-ctx.Done():
			// Undispatched jobs are marked cancelled; in-flight ones
			// finish (or cancel cooperatively) before we return.
			for j := i; j < len(jobs); j++ {
				results[j] = JobResult{Name: jobs[j].Name, Err: ctx.Err()}
			}
			close(idx)
			wg.Wait()
			return results
		}
	}
	close(idx)
	wg.Wait()
	return results
}
