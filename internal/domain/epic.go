package domain

// Epic groups tasks within an idea. The idea reference is a plain id
// resolved through the store, never an owning pointer.
type Epic struct {
	ID       string
	IdeaID   string
	Title    string
	Status   Status
	Priority Priority
}

// Clone returns a copy of the epic.
func (e *Epic) Clone() *Epic {
	c := *e
	return &c
}
