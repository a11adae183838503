package domain

import "time"

// Suspension is the explicit record of a time-bounded agent suspension.
// The newest row per agent is authoritative; the audit log keeps the immutable trail.
type Suspension struct {
	ID        string
	AgentID   string
	Reason    string
	Days      int
	Notes     string
	StartsAt  time.Time
	EndsAt    time.Time
	LiftedAt  *time.Time
	CreatedAt time.Time
}

// Active reports whether the suspension has not been lifted.
func (s *Suspension) Active() bool {
	return s.LiftedAt == nil
}
