package chatbot

import (
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Picker chooses one reply from a pool of equivalent responses.
type Picker interface {
	Pick(pool []string) string
}

const (
	PickerRandom     = "random"
	PickerRoundRobin = "round_robin"
)

// NewPicker returns the picker named by kind. Unknown kinds get the random
// picker. A zero seed seeds from the clock.
func NewPicker(kind string, seed int64) Picker {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case PickerRoundRobin, "roundrobin":
		return &RoundRobinPicker{}
	default:
		return NewRandomPicker(seed)
	}
}

type RandomPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomPicker(seed int64) *RandomPicker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomPicker{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPicker) Pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}

	p.mu.Lock()
	i := p.rng.Intn(len(pool))
	p.mu.Unlock()

	return pool[i]
}

// RoundRobinPicker cycles through pools with one shared counter, which keeps
// replies predictable for tests and demos.
type RoundRobinPicker struct {
	next atomic.Uint64
}

func (p *RoundRobinPicker) Pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	n := p.next.Add(1) - 1
	return pool[n%uint64(len(pool))]
}
