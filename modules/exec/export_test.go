package exec

// Bound reports whether the stream references are still held.
func (c *Command) Bound() bool { return c.stdout != nil || c.stderr != nil }
