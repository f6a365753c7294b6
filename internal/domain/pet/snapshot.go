package pet

func EmptySnapshot() Snapshot {
	return Snapshot{HealthStatus: HealthHealthy}
}

func (s Snapshot) Clone() Snapshot {
	out := s
	if s.BornAt != nil {
		born := *s.BornAt
		out.BornAt = &born
	}
	return out
}

func (s Snapshot) IsDead() bool {
	return s.Exists && s.HealthStatus == HealthDead
}

func (s *Snapshot) ApplyFeed(kind FeedKind, amount int) {
	gain := FeedGainPerUnit * NormalizeAmount(amount)
	switch kind {
	case FeedSweets:
		s.Happiness = ClampLevel(s.Happiness + gain)
	default:
		s.Hunger = ClampLevel(s.Hunger + gain)
	}
}

func (s *Snapshot) ApplyMedicine(amount int) {
	s.HealthLevel = ClampLevel(s.HealthLevel + MedicineGainPerUnit*NormalizeAmount(amount))
}

func (s *Snapshot) ApplyClean() {
	s.NeedsCleaning = false
	s.Happiness = ClampLevel(s.Happiness + CleanHappinessGain)
}

// ApplyResurrect resets the mood stats. The status stays Dead until the
// server confirms.
func (s *Snapshot) ApplyResurrect() {
	s.Happiness = ResurrectBaseline
	s.Hunger = ResurrectBaseline
}
