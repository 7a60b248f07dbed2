package logging

import "sync"

// ProgressSampler throttles "n of total" progress logs to one line per
// percentage bucket. It is safe for concurrent use by worker goroutines.
type ProgressSampler struct {
	mu         sync.Mutex
	bucketSize float64
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when completion crosses
// a bucket boundary (default 25%).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 25
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// Observe records done of total and reports whether a line should be logged.
// The final item always logs.
func (s *ProgressSampler) Observe(done, total int) bool {
	if s == nil || total <= 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if done >= total {
		s.lastBucket = int(100 / s.bucketSize)
		return true
	}
	percent := float64(done) / float64(total) * 100
	bucket := int(percent / s.bucketSize)
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		return true
	}
	return false
}
