package session

// ChangeKind names the transition that produced a Change.
type ChangeKind string

const (
	ChangeSelect   ChangeKind = "select"
	ChangeReveal   ChangeKind = "reveal"
	ChangeMark     ChangeKind = "mark"
	ChangeNavigate ChangeKind = "navigate"
	ChangeTick     ChangeKind = "tick"
	ChangeExpired  ChangeKind = "expired"
	ChangeSubmit   ChangeKind = "submit"
)

// Change is delivered to observers after a transition has completed.
type Change struct {
	Kind     ChangeKind
	Snapshot Snapshot
}

// Observer receives session changes. It runs on the goroutine that
// mutated the controller and must not call back into it.
type Observer func(Change)

// Subscribe registers fn and returns a function that removes it.
func (c *Controller) Subscribe(fn Observer) (unsubscribe func()) {
	id := c.nextObsID
	c.nextObsID++
	c.observers[id] = fn
	return func() { delete(c.observers, id) }
}

// notify is called as the last step of a successful transition.
func (c *Controller) notify(kind ChangeKind) {
	if len(c.observers) == 0 {
		return
	}
	change := Change{Kind: kind, Snapshot: c.Snapshot()}
	for _, fn := range c.observers {
		fn(change)
	}
}
