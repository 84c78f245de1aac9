package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// bucketStore keeps the closed time buckets in a fixed-size ring and
// accumulates the open interval's counters without locking the
// recording path.
type bucketStore struct {
	intervalRequests atomic.Int64
	intervalFailures atomic.Int64

	mu      sync.Mutex
	buckets []*TimeBucket
	head    int
	count   int
	max     int
}

func newBucketStore(max int) *bucketStore {
	if max < 1 {
		max = 1
	}
	return &bucketStore{
		buckets: make([]*TimeBucket, max),
		max:     max,
	}
}

// record counts one sample into the open interval.
func (s *bucketStore) record(failed bool) {
	s.intervalRequests.Add(1)
	if failed {
		s.intervalFailures.Add(1)
	}
}

// close fills the interval fields of b, drains the open counters and
// appends b to the ring.
func (s *bucketStore) close(b *TimeBucket, interval time.Duration) {
	b.IntervalRequests = s.intervalRequests.Swap(0)
	b.IntervalFailures = s.intervalFailures.Swap(0)
	if secs := interval.Seconds(); secs > 0 {
		b.IntervalRPS = float64(b.IntervalRequests) / secs
	}
	if b.IntervalRequests > 0 {
		b.IntervalFailRatio = float64(b.IntervalFailures) / float64(b.IntervalRequests)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[s.head] = b
	s.head = (s.head + 1) % s.max
	if s.count < s.max {
		s.count++
	}
}

// all returns the closed buckets, oldest first.
func (s *bucketStore) all() []*TimeBucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*TimeBucket, 0, s.count)
	start := s.head - s.count
	if start < 0 {
		start += s.max
	}
	for i := 0; i < s.count; i++ {
		out = append(out, s.buckets[(start+i)%s.max])
	}
	return out
}

// steadyStateRPS averages the interval RPS over buckets closed in the
// running phase and reports how many contributed.
func (s *bucketStore) steadyStateRPS() (float64, int) {
	var sum float64
	var n int
	for _, b := range s.all() {
		if b.Phase == PhaseRunning {
			sum += b.IntervalRPS
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}
