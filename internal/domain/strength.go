package domain

// EpleyE1RM estimates a one-rep max from a submaximal set using the Epley
// formula: e1RM = weight * (1 + reps/30). Monotonic in both weight and reps,
// which is what makes it usable as a record metric.
func EpleyE1RM(weightKg float64, reps int) float64 {
	if weightKg <= 0 {
		return 0
	}
	if reps <= 0 {
		return weightKg
	}
	return weightKg * (1 + float64(reps)/30.0)
}

// BrzyckiE1RM estimates a one-rep max using the Brzycki formula:
// e1RM = weight * (36 / (37 - reps)). Defined for reps < 37.
func BrzyckiE1RM(weightKg float64, reps int) float64 {
	if weightKg <= 0 {
		return 0
	}
	if reps <= 1 {
		return weightKg
	}
	if reps >= 37 {
		return 0
	}
	return weightKg * (36.0 / float64(37-reps))
}
