package progress

// Sampler suppresses repetitive progress logs, emitting only when the
// percentage crosses into a new bucket.
type Sampler struct {
	bucketSize float64
	lastBucket int
	seen       bool
}

// NewSampler builds a sampler with buckets of bucketSize percent (default
// 5 when bucketSize is not positive).
func NewSampler(bucketSize float64) *Sampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}

	return &Sampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event at percent should be
// logged. A negative percent means the total is unknown; only the first
// such event is logged.
func (s *Sampler) ShouldLog(percent float64) bool {
	if s == nil {
		return true
	}

	if percent < 0 {
		first := !s.seen
		s.seen = true

		return first
	}

	s.seen = true

	bucket := int(percent / s.bucketSize)
	if percent >= 100 {
		bucket = int(100 / s.bucketSize)
	}

	if bucket <= s.lastBucket {
		return false
	}

	s.lastBucket = bucket

	return true
}
