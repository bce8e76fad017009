package domain

import "time"

// RecordType enumerates the metric variants a personal record is tracked
// against.
type RecordType string

const (
	RecordMaxWeight    RecordType = "max_weight"
	RecordMaxReps      RecordType = "max_reps"
	RecordMaxVolume    RecordType = "max_volume"
	RecordEstimated1RM RecordType = "estimated_1rm"
)

// AllRecordTypes lists every record type evaluated for a strength entry, in
// the order rows are locked. A stable lock order keeps concurrent evaluations
// for overlapping tuples from deadlocking on each other.
func AllRecordTypes() []RecordType {
	return []RecordType{RecordMaxWeight, RecordMaxReps, RecordMaxVolume, RecordEstimated1RM}
}

// Record holds the best known value for one (user, exercise, record type)
// tuple. A row with an empty EntryID is a placeholder created so the tuple can
// be locked before its first real value lands.
type Record struct {
	UserID     string
	ExerciseID string
	Type       RecordType
	Value      float64
	EntryID    string
	SessionID  string
	AchievedAt time.Time
}

// RecordOutcome describes the result of comparing one derived value against
// the stored record for its tuple.
type RecordOutcome struct {
	UserID     string
	ExerciseID string
	Type       RecordType
	NewRecord  bool
	HadPrior   bool
	PriorValue float64
	NewValue   float64
}

// DeriveValues computes the comparison value per record type for an entry.
// Non-positive inputs yield no derivable values for the affected types.
func DeriveValues(entry PerformanceEntry) map[RecordType]float64 {
	values := make(map[RecordType]float64, 4)
	if entry.WeightKg > 0 {
		values[RecordMaxWeight] = entry.WeightKg
	}
	if entry.Reps > 0 {
		values[RecordMaxReps] = float64(entry.Reps)
	}
	if entry.WeightKg > 0 && entry.Reps > 0 {
		values[RecordMaxVolume] = entry.WeightKg * float64(entry.Reps)
		values[RecordEstimated1RM] = EpleyE1RM(entry.WeightKg, entry.Reps)
	}
	return values
}

// CompareRecord decides whether value strictly beats the current record.
// Equalling the stored value is not a record. current may be nil or a
// placeholder row. Pure: persistence of an improved record is the
// coordinator's job.
func CompareRecord(current *Record, rt RecordType, value float64, entry PerformanceEntry) RecordOutcome {
	outcome := RecordOutcome{
		UserID:     entry.UserID,
		ExerciseID: entry.ExerciseID,
		Type:       rt,
		NewValue:   value,
	}
	if current != nil && current.EntryID != "" {
		outcome.HadPrior = true
		outcome.PriorValue = current.Value
	}
	if value <= 0 {
		return outcome
	}
	if !outcome.HadPrior || value > outcome.PriorValue {
		outcome.NewRecord = true
	}
	return outcome
}
