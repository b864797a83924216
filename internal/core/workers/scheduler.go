package workers

import (
	"context"
	"log"

	"github.com/go-co-op/gocron/v2"
)

type SquadLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// StartDailyRecompute schedules a full leaderboard refresh once a night. It
// feeds the same queue as on-demand recomputes, so a squad is never refreshed
// twice concurrently from this process.
func StartDailyRecompute(ctx context.Context, lister SquadLister, worker *RecomputeWorker) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 30, 0))),
		gocron.NewTask(func() {
			ids, err := lister.ListIDs(ctx)
			if err != nil {
				log.Printf("[Scheduler] Failed to list squads: %v", err)
				return
			}

			log.Printf("[Scheduler] Nightly recompute for %d squads", len(ids))
			for _, id := range ids {
				worker.Enqueue(id)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}
