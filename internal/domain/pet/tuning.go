package pet

const (
	MinLevel = 0
	MaxLevel = 10

	FeedGainPerUnit     = 2
	MedicineGainPerUnit = 2
	CleanHappinessGain  = 1
	ResurrectBaseline   = 5
)

func ClampLevel(v int) int {
	if v < MinLevel {
		return MinLevel
	}
	if v > MaxLevel {
		return MaxLevel
	}
	return v
}

// NormalizeAmount treats a non-positive amount as a single unit.
func NormalizeAmount(amount int) int {
	if amount <= 0 {
		return 1
	}
	return amount
}
