package agent

import (
	"fmt"
	"sync"

	"github.com/yonglu/tripweaver/internal/amap"
)

// Policy mechanically enforces the tool-ordering invariant the prompts
// describe: a route may only be computed between coordinates produced by a
// successful geocode earlier in the same conversation. The prompt asks the
// model to behave this way; the policy makes violations impossible instead
// of trusted.
type Policy struct {
	mu       sync.Mutex
	geocoded map[string]struct{}
}

// NewPolicy creates an empty policy for one conversation.
func NewPolicy() *Policy {
	return &Policy{geocoded: make(map[string]struct{})}
}

// ObserveGeocode records a successfully resolved place.
func (p *Policy) ObserveGeocode(place amap.Place) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.geocoded[place.Location] = struct{}{}
}

// AllowRoute rejects route calls whose endpoints were never geocoded in
// this conversation.
func (p *Policy) AllowRoute(origin, destination string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.geocoded[origin]; !ok {
		return fmt.Errorf("origin %q was not resolved by search_place_info in this conversation", origin)
	}
	if _, ok := p.geocoded[destination]; !ok {
		return fmt.Errorf("destination %q was not resolved by search_place_info in this conversation", destination)
	}
	return nil
}
