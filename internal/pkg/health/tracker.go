package health

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
)

const (
	DefaultHealth      = 100
	MaxHealth          = 100
	SuccessReward      = 1
	FailurePenalty     = 10
	AvailableThreshold = 50
)

// Tracker keeps a reliability score per resource (font file, background
// image). Six consecutive failures take a fresh resource below the
// availability threshold; a single success only restores one point.
//
// Records are created lazily and never evicted.
type Tracker struct {
	mu     sync.Mutex
	scores map[string]int
}

func NewTracker() *Tracker {
	return &Tracker{scores: make(map[string]int)}
}

func (t *Tracker) RecordSuccess(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scores[id] = min(MaxHealth, t.scoreLocked(id)+SuccessReward)
}

func (t *Tracker) RecordFailure(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scores[id] = t.scoreLocked(id) - FailurePenalty
}

// Health returns the current score, DefaultHealth for unseen ids.
func (t *Tracker) Health(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scoreLocked(id)
}

// Available keeps the ids whose score is at least AvailableThreshold,
// preserving input order.
func (t *Tracker) Available(ids []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if t.scoreLocked(id) >= AvailableThreshold {
			out = append(out, id)
		}
	}
	return out
}

// Select picks one candidate with probability proportional to
// max(0, health). When every weight is zero it falls back to a uniform
// pick, so unhealthy resources are never a reason to fail.
func (t *Tracker) Select(rng *rand.Rand, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates to select from", entity.ErrInvalidArgument)
	}

	t.mu.Lock()
	weights := make([]int, len(candidates))
	total := 0
	for i, id := range candidates {
		weights[i] = max(0, t.scoreLocked(id))
		total += weights[i]
	}
	t.mu.Unlock()

	if total == 0 {
		return candidates[rng.IntN(len(candidates))], nil
	}

	pick := rng.IntN(total)
	for i, w := range weights {
		if pick < w {
			return candidates[i], nil
		}
		pick -= w
	}
	return candidates[len(candidates)-1], nil
}

// Snapshot copies every known record.
func (t *Tracker) Snapshot() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]int, len(t.scores))
	for id, score := range t.scores {
		out[id] = score
	}
	return out
}

// Restore replaces known records with the given scores.
func (t *Tracker) Restore(scores map[string]int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, score := range scores {
		t.scores[id] = min(MaxHealth, score)
	}
}

// Merge reconciles scores observed by another tracker. The lower score
// wins so a failure seen by any worker is never forgotten.
func (t *Tracker) Merge(scores map[string]int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, score := range scores {
		t.scores[id] = min(t.scoreLocked(id), score)
	}
}

// IDs lists every tracked id in sorted order.
func (t *Tracker) IDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, 0, len(t.scores))
	for id := range t.scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (t *Tracker) scoreLocked(id string) int {
	if score, ok := t.scores[id]; ok {
		return score
	}
	return DefaultHealth
}
