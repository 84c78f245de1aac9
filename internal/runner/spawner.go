package runner

import (
	"context"

	"github.com/swarmload/swarm/internal/rate"
	"github.com/swarmload/swarm/internal/scenario"
)

// buildAssignments expands per-class user counts into a spawn order
// that interleaves the classes, so a mixed population ramps up evenly
// instead of one class at a time.
func buildAssignments(classes []*scenario.UserClass, counts []int) []*scenario.UserClass {
	total := 0
	for _, n := range counts {
		total += n
	}

	out := make([]*scenario.UserClass, 0, total)
	remaining := append([]int(nil), counts...)
	for len(out) < total {
		for i, class := range classes {
			if remaining[i] > 0 {
				out = append(out, class)
				remaining[i]--
			}
		}
	}
	return out
}

// spawn starts the prepared users paced at the configured spawn rate,
// stopping early when ctx expires. Each user runs on userCtx, which
// outlives the spawn window. Returns how many users were started.
func (r *Runner) spawn(ctx, userCtx context.Context, users []*User) int {
	bucket := rate.NewLeakyBucket(r.cfg.SpawnRate)

	started := 0
	for _, u := range users {
		if err := bucket.Wait(ctx); err != nil {
			break
		}

		r.wg.Add(1)
		go func(u *User) {
			defer r.wg.Done()
			u.Run(userCtx)
			r.engine.SetActiveUsers(int(r.live.Add(-1)))
		}(u)

		started++
		r.engine.SetActiveUsers(int(r.live.Add(1)))
	}
	return started
}
