package starboard

import (
	"sync"
)

// PromotionGuard marks keys that are currently being worked on.
// Only the caller that won TryBegin may call Retry and End.
type PromotionGuard struct {
	sync.Mutex
	// key -> a TryBegin lost since the owner last checked
	inFlight map[string]bool
}

func NewPromotionGuard() *PromotionGuard {
	return &PromotionGuard{
		inFlight: make(map[string]bool),
	}
}

// TryBegin returns true if the caller now owns key
func (g *PromotionGuard) TryBegin(key string) bool {
	g.Lock()
	defer g.Unlock()

	if _, ok := g.inFlight[key]; ok {
		g.inFlight[key] = true
		return false
	}
	g.inFlight[key] = false
	return true
}

// Retry reports whether someone lost TryBegin on key since the last call, and resets it
func (g *PromotionGuard) Retry(key string) bool {
	g.Lock()
	defer g.Unlock()

	contended := g.inFlight[key]
	if _, ok := g.inFlight[key]; ok {
		g.inFlight[key] = false
	}
	return contended
}

func (g *PromotionGuard) End(key string) {
	g.Lock()
	delete(g.inFlight, key)
	g.Unlock()
}
