package sim

// TokenBucket implements continuous-refill rate limiting in virtual time.
// Refill is applied lazily on each admission check, never on a timer.
type TokenBucket struct {
	rate       float64 // tokens per second; <= 0 disables admission
	tokens     float64
	lastRefill float64 // virtual seconds
}

// NewTokenBucket creates a bucket holding one second of credit.
func NewTokenBucket(rate float64) *TokenBucket {
	tb := &TokenBucket{rate: rate}
	if rate > 0 {
		tb.tokens = rate
	}
	return tb
}

// Capacity returns the burst cap, 2x the rate.
func (tb *TokenBucket) Capacity() float64 {
	if tb.rate <= 0 {
		return 0
	}
	return 2 * tb.rate
}

// Tokens returns the current credit without refilling.
func (tb *TokenBucket) Tokens() float64 {
	return tb.tokens
}

// LastRefill returns the virtual time of the last refill.
func (tb *TokenBucket) LastRefill() float64 {
	return tb.lastRefill
}

// Refill credits (now - lastRefill) * rate tokens, capped at 2x rate.
// A disabled bucket still advances its refill timestamp.
func (tb *TokenBucket) Refill(now float64) {
	if tb.rate <= 0 {
		tb.lastRefill = now
		return
	}
	elapsed := now - tb.lastRefill
	if elapsed <= 0 {
		return
	}
	tb.tokens = min(tb.tokens+elapsed*tb.rate, tb.Capacity())
	tb.lastRefill = now
}

// TryConsume refills, then takes exactly one token if available.
// A denial leaves the token count untouched.
func (tb *TokenBucket) TryConsume(now float64) bool {
	tb.Refill(now)
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}
