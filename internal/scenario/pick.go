package scenario

import "math/rand"

// DistributeUsers splits a total user count across the classes in
// proportion to their weights, using largest-remainder rounding so the
// counts always sum to total. Ties go to the earlier class.
func DistributeUsers(classes []*UserClass, total int) []int {
	counts := make([]int, len(classes))
	if total <= 0 || len(classes) == 0 {
		return counts
	}

	weightSum := 0
	for _, c := range classes {
		weightSum += c.Weight
	}
	if weightSum <= 0 {
		counts[0] = total
		return counts
	}

	remainders := make([]float64, len(classes))
	assigned := 0
	for i, c := range classes {
		share := float64(c.Weight) * float64(total) / float64(weightSum)
		counts[i] = int(share)
		remainders[i] = share - float64(counts[i])
		assigned += counts[i]
	}

	for assigned < total {
		best := 0
		for i := 1; i < len(remainders); i++ {
			if remainders[i] > remainders[best] {
				best = i
			}
		}
		counts[best]++
		remainders[best] = -1
		assigned++
	}
	return counts
}

// TaskPicker selects tasks by weight. Picks are driven by the caller's
// seeded source, so a fixed seed reproduces the same task sequence.
type TaskPicker struct {
	tasks []*Task
	cum   []int
	total int
	rng   *rand.Rand
}

// NewTaskPicker builds a picker over the given tasks. Tasks with
// weight below 1 count as weight 1.
func NewTaskPicker(tasks []*Task, rng *rand.Rand) *TaskPicker {
	p := &TaskPicker{
		tasks: tasks,
		cum:   make([]int, len(tasks)),
		rng:   rng,
	}
	for i, t := range tasks {
		w := t.Weight
		if w < 1 {
			w = 1
		}
		p.total += w
		p.cum[i] = p.total
	}
	return p
}

// Pick returns the next task.
func (p *TaskPicker) Pick() *Task {
	if len(p.tasks) == 1 {
		return p.tasks[0]
	}
	n := p.rng.Intn(p.total)
	for i, c := range p.cum {
		if n < c {
			return p.tasks[i]
		}
	}
	return p.tasks[len(p.tasks)-1]
}
