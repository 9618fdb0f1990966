package lookup

// Scheduled reports whether a reset schedule is installed.
func (c *Cache) Scheduled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sched != nil
}
