package workers

import (
	"context"
	"log"
)

type SquadRecomputer interface {
	RecomputeAll(ctx context.Context, squadID string) error
}

type RecomputeJob struct {
	SquadID string
}

// RecomputeWorker refreshes squad leaderboards off the request path. Activity
// ingestion enqueues the user's squads here; the nightly scheduler covers
// anything the queue drops.
type RecomputeWorker struct {
	recomputer SquadRecomputer
	jobs       chan RecomputeJob
}

func NewRecomputeWorker(recomputer SquadRecomputer) *RecomputeWorker {
	return &RecomputeWorker{
		recomputer: recomputer,
		jobs:       make(chan RecomputeJob, 100),
	}
}

func (w *RecomputeWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Recompute Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Recompute Worker shutting down...")
				return
			}
		}
	}()
}

func (w *RecomputeWorker) Enqueue(squadID string) {
	select {
	case w.jobs <- RecomputeJob{SquadID: squadID}:
	default:
		log.Printf("Recompute Worker queue full! Dropping job for squad %s", squadID)
	}
}

func (w *RecomputeWorker) processJob(ctx context.Context, job RecomputeJob) {
	if err := w.recomputer.RecomputeAll(ctx, job.SquadID); err != nil {
		log.Printf("Worker failed to recompute squad %s: %v", job.SquadID, err)
	}
}
