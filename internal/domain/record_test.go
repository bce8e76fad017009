package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func strengthEntry(weight float64, reps int) PerformanceEntry {
	return PerformanceEntry{
		ID:         "entry-1",
		UserID:     "user-1",
		ExerciseID: "bench-press",
		SessionID:  "session-1",
		WeightKg:   weight,
		Reps:       reps,
		RecordedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestDeriveValuesStrengthSet(t *testing.T) {
	values := DeriveValues(strengthEntry(100, 5))

	require.Len(t, values, 4)
	require.Equal(t, 100.0, values[RecordMaxWeight])
	require.Equal(t, 5.0, values[RecordMaxReps])
	require.Equal(t, 500.0, values[RecordMaxVolume])
	require.InDelta(t, 116.67, values[RecordEstimated1RM], 0.01)
}

func TestDeriveValuesRejectsNonPositiveInputs(t *testing.T) {
	require.Empty(t, DeriveValues(strengthEntry(0, 0)))
	require.Empty(t, DeriveValues(strengthEntry(-20, -3)))

	weightOnly := DeriveValues(strengthEntry(80, 0))
	require.Len(t, weightOnly, 1)
	require.Equal(t, 80.0, weightOnly[RecordMaxWeight])
}

func TestCompareRecordNoPriorIsNewRecord(t *testing.T) {
	outcome := CompareRecord(nil, RecordMaxWeight, 100, strengthEntry(100, 5))

	require.True(t, outcome.NewRecord)
	require.False(t, outcome.HadPrior)
	require.Equal(t, 100.0, outcome.NewValue)
}

func TestCompareRecordPlaceholderIsNewRecord(t *testing.T) {
	placeholder := &Record{UserID: "user-1", ExerciseID: "bench-press", Type: RecordMaxWeight}

	outcome := CompareRecord(placeholder, RecordMaxWeight, 60, strengthEntry(60, 1))
	require.True(t, outcome.NewRecord)
	require.False(t, outcome.HadPrior, "placeholder rows carry no prior value")
}

func TestCompareRecordStrictImprovementRequired(t *testing.T) {
	current := &Record{
		UserID:     "user-1",
		ExerciseID: "bench-press",
		Type:       RecordMaxWeight,
		Value:      100,
		EntryID:    "entry-0",
	}

	tie := CompareRecord(current, RecordMaxWeight, 100, strengthEntry(100, 1))
	require.False(t, tie.NewRecord, "equalling the record is not a record")
	require.True(t, tie.HadPrior)
	require.Equal(t, 100.0, tie.PriorValue)

	worse := CompareRecord(current, RecordMaxWeight, 95, strengthEntry(95, 1))
	require.False(t, worse.NewRecord)

	better := CompareRecord(current, RecordMaxWeight, 102.5, strengthEntry(102.5, 1))
	require.True(t, better.NewRecord)
	require.Equal(t, 100.0, better.PriorValue)
	require.Equal(t, 102.5, better.NewValue)
}

func TestCompareRecordNonPositiveValueNeverRecords(t *testing.T) {
	outcome := CompareRecord(nil, RecordMaxWeight, 0, strengthEntry(0, 0))
	require.False(t, outcome.NewRecord)
}

func TestEntryValidate(t *testing.T) {
	require.NoError(t, strengthEntry(100, 5).Validate())

	// Without an ID the stored record would be indistinguishable from a
	// never-set placeholder and a later worse value could replace it.
	missingID := strengthEntry(100, 5)
	missingID.ID = ""
	require.ErrorIs(t, missingID.Validate(), ErrInvalidEntry)

	missingUser := strengthEntry(100, 5)
	missingUser.UserID = " "
	require.ErrorIs(t, missingUser.Validate(), ErrInvalidEntry)

	missingExercise := strengthEntry(100, 5)
	missingExercise.ExerciseID = ""
	require.ErrorIs(t, missingExercise.Validate(), ErrInvalidEntry)

	missingTime := strengthEntry(100, 5)
	missingTime.RecordedAt = time.Time{}
	require.ErrorIs(t, missingTime.Validate(), ErrInvalidEntry)
}

func TestEpleyE1RM(t *testing.T) {
	require.InDelta(t, 116.67, EpleyE1RM(100, 5), 0.01)
	require.Equal(t, 100.0, EpleyE1RM(100, 0), "zero reps falls back to the weight itself")
	require.Equal(t, 0.0, EpleyE1RM(0, 5))
	require.Equal(t, 0.0, EpleyE1RM(-10, 5))
}

func TestBrzyckiE1RM(t *testing.T) {
	require.InDelta(t, 112.5, BrzyckiE1RM(100, 5), 0.01)
	require.Equal(t, 100.0, BrzyckiE1RM(100, 1))
	require.Equal(t, 0.0, BrzyckiE1RM(100, 37))
	require.Equal(t, 0.0, BrzyckiE1RM(0, 5))
}
