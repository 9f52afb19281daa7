package trafficfeed

import (
	"sync/atomic"
	"time"

	"github.com/lintang-b-s/Congestionx/pkg/congestion"
	"go.uber.org/zap"
)

// Snapshot is the latest full sample set. it is replaced wholesale, never patched.
type Snapshot struct {
	Samples   []congestion.TrafficSample `json:"samples"`
	UpdatedAt time.Time                  `json:"updated_at"`
	Source    string                     `json:"source,omitempty"`
}

// Store holds the latest snapshot. readers never block writers.
type Store struct {
	cur atomic.Pointer[Snapshot]
	log *zap.Logger
	now func() time.Time
}

func NewStore(log *zap.Logger) *Store {
	s := &Store{log: log, now: time.Now}
	s.cur.Store(&Snapshot{Samples: make([]congestion.TrafficSample, 0)})
	return s
}

// Replace swaps in a copy of samples as the latest snapshot.
func (s *Store) Replace(samples []congestion.TrafficSample, source string) Snapshot {
	cp := make([]congestion.TrafficSample, len(samples))
	copy(cp, samples)

	snap := &Snapshot{Samples: cp, UpdatedAt: s.now(), Source: source}
	s.cur.Store(snap)

	s.log.Debug("traffic snapshot replaced", zap.Int("samples", len(cp)), zap.String("source", source))
	return *snap
}

func (s *Store) Latest() Snapshot {
	return *s.cur.Load()
}

// Samples. the latest sample set. callers must not modify it.
func (s *Store) Samples() []congestion.TrafficSample {
	return s.cur.Load().Samples
}
