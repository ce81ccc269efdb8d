package state

import "time"

// Namespace groups stored steps. Step identifiers are unique within one.
type Namespace struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CreateTime  time.Time `json:"create_time"`
}

type NamespaceStub struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CreateTime  time.Time `json:"create_time"`

	// Steps is the number of steps stored in the namespace.
	Steps int `json:"steps"`
}

// Stamp sets the create time of a namespace that does not have one yet.
func (n *Namespace) Stamp(now time.Time) {
	if n.CreateTime.IsZero() {
		n.CreateTime = now.UTC()
	}
}

func (n *Namespace) Stub(steps int) *NamespaceStub {
	return &NamespaceStub{
		ID:          n.ID,
		Description: n.Description,
		CreateTime:  n.CreateTime,
		Steps:       steps,
	}
}
