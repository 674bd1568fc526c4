// Package playlist provides the shuffle/repeat queue for audio sessions.
package playlist

import (
	"math/rand"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/gsilva87/swipedeck/internal/domain/playback"
)

// Queue is an ordered list of media item IDs with a current position,
// shuffle order and repeat policy. It implements playback.Queue.
// The OnCurrent callback is invoked whenever the current item changes so
// the owner can load it.
type Queue struct {
	mu sync.Mutex

	items   []string
	order   []int // play order: identity, or shuffled
	pos     int   // index into order
	shuffle bool
	repeat  playback.RepeatMode

	onCurrent func(id string)
}

// NewQueue creates a queue over the given item IDs, starting at startID
// (or the first item when startID is not found).
func NewQueue(items []string, startID string) *Queue {
	q := &Queue{
		items: append([]string(nil), items...),
		order: identityOrder(len(items)),
	}
	for i, id := range q.items {
		if id == startID {
			q.pos = i
			break
		}
	}
	return q
}

// OnCurrent registers the callback invoked when the current item changes.
func (q *Queue) OnCurrent(fn func(id string)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onCurrent = fn
}

// Current returns the current item ID, or "" for an empty queue.
func (q *Queue) Current() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.currentLocked()
}

func (q *Queue) currentLocked() string {
	if len(q.items) == 0 {
		return ""
	}
	return q.items[q.order[q.pos]]
}

// Len returns the number of items in the queue.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Next advances to the next item in play order. At the end of the queue it
// wraps when repeat is all and reports false otherwise.
func (q *Queue) Next() bool {
	q.mu.Lock()

	if len(q.items) == 0 {
		q.mu.Unlock()
		return false
	}

	if q.pos+1 >= len(q.order) {
		if q.repeat != playback.RepeatAll {
			q.mu.Unlock()
			return false
		}
		q.pos = 0
	} else {
		q.pos++
	}

	id := q.currentLocked()
	fn := q.onCurrent
	q.mu.Unlock()

	log.Debug().Str("item", id).Msg("Queue advanced")
	if fn != nil {
		fn(id)
	}
	return true
}

// Previous moves back one item in play order, stopping at the start.
func (q *Queue) Previous() bool {
	q.mu.Lock()

	if len(q.items) == 0 || q.pos == 0 {
		q.mu.Unlock()
		return false
	}
	q.pos--

	id := q.currentLocked()
	fn := q.onCurrent
	q.mu.Unlock()

	if fn != nil {
		fn(id)
	}
	return true
}

// IsShuffling reports whether shuffle mode is on.
func (q *Queue) IsShuffling() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.shuffle
}

// SetShuffle toggles shuffle mode. Turning it on shuffles the remaining
// items while keeping the current item in place; turning it off restores
// list order, keeping the current item current.
func (q *Queue) SetShuffle(on bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.shuffle == on || len(q.items) == 0 {
		q.shuffle = on
		return
	}
	q.shuffle = on

	current := q.order[q.pos]
	if on {
		rest := make([]int, 0, len(q.order)-1)
		for _, idx := range q.order {
			if idx != current {
				rest = append(rest, idx)
			}
		}
		rand.Shuffle(len(rest), func(i, j int) {
			rest[i], rest[j] = rest[j], rest[i]
		})
		q.order = append([]int{current}, rest...)
		q.pos = 0
	} else {
		q.order = identityOrder(len(q.items))
		q.pos = current
	}
}

// RepeatMode returns the repeat policy.
func (q *Queue) RepeatMode() playback.RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.repeat
}

// SetRepeatMode sets the repeat policy.
func (q *Queue) SetRepeatMode(mode playback.RepeatMode) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.repeat = mode
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
