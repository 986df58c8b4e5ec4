package transport

import "sync"

// collective is a combining barrier: every alive rank contributes one
// value, the last arrival computes the reduction and wakes everyone
// else with the same result. It backs sum_over_ranks, min_over_ranks,
// and barrier() without needing a real MPI collective.
type collective struct {
	mu       sync.Mutex
	cond     *sync.Cond
	arrived  int
	acc      float64
	lastResu float64
	gen      uint64
}

func newCollective() *collective {
	c := &collective{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// reduce combines value from `total` participants using op, starting
// from identity, and returns the combined result to every caller.
func (c *collective) reduce(total int, value, identity float64, op func(a, b float64) float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	myGen := c.gen
	if c.arrived == 0 {
		c.acc = identity
	}
	c.acc = op(c.acc, value)
	c.arrived++

	if c.arrived >= total {
		c.lastResu = c.acc
		c.arrived = 0
		c.gen++
		c.cond.Broadcast()
		return c.lastResu
	}

	for c.gen == myGen {
		c.cond.Wait()
	}
	return c.lastResu
}

// wait is a barrier with no payload.
func (c *collective) wait(total int) {
	c.reduce(total, 0, 0, func(a, b float64) float64 { return a })
}
