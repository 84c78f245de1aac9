package scenario

import "fmt"

// Filter returns a copy of the scenario keeping only the tasks
// runnable under the include and exclude tag lists. With include tags
// set, a task must carry at least one of them; exclude tags then
// remove matches. Untagged tasks run only when no include list is
// given. User classes left without tasks are dropped.
func (s *Scenario) Filter(include, exclude []string) (*Scenario, error) {
	includeSet := toSet(include)
	excludeSet := toSet(exclude)

	out := &Scenario{
		Name:       s.Name,
		Variables:  s.Variables,
		Thresholds: s.Thresholds,
	}
	for _, u := range s.Users {
		var kept []*Task
		for _, t := range u.Tasks {
			if taskRunnable(t, includeSet, excludeSet) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			continue
		}
		out.Users = append(out.Users, &UserClass{
			Name:   u.Name,
			Weight: u.Weight,
			Wait:   u.Wait,
			Tasks:  kept,
		})
	}

	if len(out.Users) == 0 {
		return nil, fmt.Errorf("tag filter leaves no runnable tasks (tags: %v, exclude-tags: %v)", include, exclude)
	}
	return out, nil
}

func taskRunnable(t *Task, include, exclude map[string]struct{}) bool {
	if len(include) > 0 {
		found := false
		for _, tag := range t.Tags {
			if _, ok := include[tag]; ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, tag := range t.Tags {
		if _, ok := exclude[tag]; ok {
			return false
		}
	}
	return true
}

func toSet(tags []string) map[string]struct{} {
	if len(tags) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}
