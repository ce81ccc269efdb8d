package state

import (
	"maps"
	"time"

	"github.com/oklog/ulid/v2"
)

// Step is a stored step document. ID is the document's identifier.
type Step struct {
	ID        string         `json:"id"`
	Namespace string         `json:"namespace"`
	Config    map[string]any `json:"config"`

	// Revision changes on every write and is used for optimistic
	// concurrency on update.
	Revision ulid.ULID `json:"revision"`

	CreateTime time.Time `json:"create_time"`
	UpdateTime time.Time `json:"update_time"`
}

type StepStub struct {
	ID         string    `json:"id"`
	Namespace  string    `json:"namespace"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Revision   ulid.ULID `json:"revision"`
	UpdateTime time.Time `json:"update_time"`
}

func (s *Step) Stub() *StepStub {
	return &StepStub{
		ID:         s.ID,
		Namespace:  s.Namespace,
		Name:       s.configString("name"),
		Type:       s.Type(),
		Revision:   s.Revision,
		UpdateTime: s.UpdateTime,
	}
}

func (s *Step) Type() string { return s.configString("type") }

func (s *Step) configString(key string) string {
	v, _ := s.Config[key].(string)
	return v
}

// Stamp assigns a new revision and update time. The create time is kept
// once set.
func (s *Step) Stamp(now time.Time) {
	s.Revision = ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy())
	s.UpdateTime = now
	if s.CreateTime.IsZero() {
		s.CreateTime = now
	}
}

// Copy returns a shallow copy with its own top level config map.
func (s *Step) Copy() *Step {
	out := *s
	out.Config = maps.Clone(s.Config)
	return &out
}
