package pet

import (
	"math"
	"time"
)

type TranslatedState struct {
	Happiness     int
	Hunger        int
	Health        int
	HealthStatus  HealthStatus
	Username      string
	BornAt        *uint64
	NeedsCleaning bool
	Exists        bool
	IsDead        bool
}

// Translate maps a server record to canonical local values. A nil record
// means no pet exists.
func Translate(r *RawRecord) TranslatedState {
	if r == nil {
		return TranslatedState{HealthStatus: HealthHealthy}
	}
	status := ParseHealthStatus(r.Health)
	out := TranslatedState{
		Happiness:    clampWireLevel(r.Sweets),
		Hunger:       clampWireLevel(r.Food),
		Health:       clampWireLevel(r.Vitamins),
		HealthStatus: status,
		Username:     r.Name,
		Exists:       true,
		IsDead:       status == HealthDead,
	}
	if r.Pooped != nil {
		out.NeedsCleaning = *r.Pooped
	}
	if r.BornAt != nil {
		born := *r.BornAt
		out.BornAt = &born
	}
	return out
}

// Snapshot converts the translated values into a snapshot stamped at now.
func (t TranslatedState) Snapshot(now time.Time) Snapshot {
	s := Snapshot{
		Happiness:     t.Happiness,
		Hunger:        t.Hunger,
		HealthLevel:   t.Health,
		HealthStatus:  t.HealthStatus,
		NeedsCleaning: t.NeedsCleaning,
		Username:      t.Username,
		Exists:        t.Exists,
		UpdatedAt:     now,
	}
	if t.BornAt != nil {
		born := *t.BornAt
		s.BornAt = &born
	}
	return s
}

func clampWireLevel(v float64) int {
	if math.IsNaN(v) || v <= MinLevel {
		return MinLevel
	}
	if v >= MaxLevel {
		return MaxLevel
	}
	return int(v)
}
