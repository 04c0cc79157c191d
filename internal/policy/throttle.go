package policy

import (
	"sync"

	"golang.org/x/time/rate"
)

// Class is a request-rate class assigned to groups of endpoints. Author and
// book endpoints sit in the basic class, book-instance endpoints in premium.
type Class string

const (
	ClassBasic   Class = "basic"
	ClassPremium Class = "premium"
)

// Throttle is consulted by transport middleware before an operation runs.
// It is an interface so deployments can plug in a shared (e.g. Redis-backed)
// limiter without touching the policy table.
type Throttle interface {
	Allow(clientID string, class Class) bool
}

type Rate struct {
	PerSecond float64
	Burst     int
}

// RateThrottle is an in-process token-bucket Throttle keyed by client and
// class.
type RateThrottle struct {
	mu      sync.Mutex
	rates   map[Class]Rate
	buckets map[string]*rate.Limiter
}

func NewRateThrottle(rates map[Class]Rate) *RateThrottle {
	return &RateThrottle{
		rates:   rates,
		buckets: make(map[string]*rate.Limiter),
	}
}

func (t *RateThrottle) Allow(clientID string, class Class) bool {
	r, ok := t.rates[class]
	if !ok {
		// Unknown class: no limit configured, let it through.
		return true
	}

	key := string(class) + ":" + clientID

	t.mu.Lock()
	limiter, ok := t.buckets[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(r.PerSecond), r.Burst)
		t.buckets[key] = limiter
	}
	t.mu.Unlock()

	return limiter.Allow()
}

// Unlimited is a Throttle that never rejects, handy in tests and for the
// session-authenticated web surface.
type Unlimited struct{}

func (Unlimited) Allow(string, Class) bool { return true }
