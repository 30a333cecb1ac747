package game

// countdown is a second-granularity timer owned by a room actor and advanced
// by the lobby's shared ticker. It fires exactly once: Tick reports expiry on
// the call that reaches zero and clears the handle in the same step, so a
// manual cancel and a natural expiry can never both act on the same round.
type countdown struct {
	remaining int
	active    bool
}

// Start arms the countdown. Refuses to arm while a previous run is still
// active; the handle must be cleared (expiry or cancel) first.
func (c *countdown) Start(seconds int) bool {
	if c.active || seconds <= 0 {
		return false
	}
	c.remaining = seconds
	c.active = true
	return true
}

// Tick advances by one second. Returns true exactly once per run, on the
// tick that exhausts it.
func (c *countdown) Tick() bool {
	if !c.active {
		return false
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.active = false
		return true
	}
	return false
}

// Cancel clears the handle. Idempotent: cancelling an inactive countdown is
// a no-op and reports false.
func (c *countdown) Cancel() bool {
	if !c.active {
		return false
	}
	c.active = false
	c.remaining = 0
	return true
}

func (c *countdown) Active() bool {
	return c.active
}

func (c *countdown) Remaining() int {
	return c.remaining
}
