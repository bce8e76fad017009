package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"example.com/gamification/internal/award"
	"example.com/gamification/internal/domain"
	"example.com/gamification/internal/events"
)

// EventWorkoutSetRecorded is the upstream event type that feeds the award pipeline.
const EventWorkoutSetRecorded = "workout.set_recorded"

type awardProcessor interface {
	Process(ctx context.Context, entry domain.PerformanceEntry) (award.Result, error)
}

type activityRecorder interface {
	ApplyActivity(ctx context.Context, userID, entryID string, activity domain.ActivityType, at time.Time) (domain.ProfileSnapshot, error)
}

type xpPublisher interface {
	SetXP(ctx context.Context, userID string, xp int) error
}

// AwardHandler turns recorded workout sets into XP, personal records, and badges.
type AwardHandler struct {
	processor awardProcessor
	tracker   activityRecorder
	board     xpPublisher
	logger    *log.Logger
}

// NewAwardHandler constructs the handler. The board may be nil when no
// leaderboard is configured.
func NewAwardHandler(processor awardProcessor, tracker activityRecorder, board xpPublisher) *AwardHandler {
	return &AwardHandler{
		processor: processor,
		tracker:   tracker,
		board:     board,
		logger:    log.New(log.Writer(), "[award-handler] ", log.LstdFlags),
	}
}

// Handle processes one consumed message. It returns an error only for
// infrastructure failures where redelivery can help; malformed or already
// settled work is committed so the partition keeps moving.
func (h *AwardHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != EventWorkoutSetRecorded {
		return nil
	}

	var evt events.WorkoutSetRecorded
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		h.logger.Printf("malformed payload (topic=%s, offset=%d): %v", msg.Topic, msg.Offset, err)
		return nil
	}

	if evt.EntryID == "" {
		evt.EntryID = uuid.NewString()
	}
	entry := domain.PerformanceEntry{
		ID:         evt.EntryID,
		UserID:     evt.UserID,
		ExerciseID: evt.ExerciseID,
		SessionID:  evt.SessionID,
		WeightKg:   evt.WeightKg,
		Reps:       evt.Reps,
		RecordedAt: evt.RecordedAt,
	}
	if err := entry.Validate(); err != nil {
		h.logger.Printf("rejected entry (entry=%s): %v", entry.ID, err)
		return nil
	}

	snapshot, err := h.tracker.ApplyActivity(ctx, entry.UserID, entry.ID, domain.ActivityWorkoutCompletion, entry.RecordedAt)
	if err != nil {
		return err
	}

	result, err := h.processor.Process(ctx, entry)
	switch {
	case errors.Is(err, domain.ErrInvalidEntry):
		h.logger.Printf("rejected entry (entry=%s): %v", entry.ID, err)
		return nil
	case errors.Is(err, award.ErrRetryExhausted):
		// Redelivering now would spin on the same contention. The next set
		// from this user re-evaluates all record types anyway.
		h.logger.Printf("award deferred under contention (user=%s, entry=%s): %v", entry.UserID, entry.ID, err)
		return nil
	case err != nil:
		return err
	}

	if len(result.NewRecords) > 0 {
		snapshot, err = h.tracker.ApplyActivity(ctx, entry.UserID, entry.ID, domain.ActivityStrengthPR, entry.RecordedAt)
		if err != nil {
			h.logger.Printf("record bonus failed (user=%s): %v", entry.UserID, err)
		}
	}

	if h.board != nil {
		if err := h.board.SetXP(ctx, entry.UserID, snapshot.XP); err != nil {
			h.logger.Printf("leaderboard update failed (user=%s): %v", entry.UserID, err)
		}
	}
	return nil
}
