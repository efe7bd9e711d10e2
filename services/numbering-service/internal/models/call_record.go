package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CallRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CallerID  primitive.ObjectID `bson:"caller_id" json:"callerId"`
	CalleeID  primitive.ObjectID `bson:"callee_id" json:"calleeId"`
	StartTime time.Time          `bson:"start_time" json:"startTime"`
	EndTime   time.Time          `bson:"end_time" json:"endTime"`
	// Duration is in milliseconds.
	Duration  int64      `bson:"duration" json:"duration"`
	Status    CallStatus `bson:"status" json:"status"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
}

type CallStatus string

const (
	CallStatusCompleted CallStatus = "completed"
	CallStatusMissed    CallStatus = "missed"
	CallStatusFailed    CallStatus = "failed"
	CallStatusBusy      CallStatus = "busy"
	CallStatusNoAnswer  CallStatus = "no-answer"
)

func (s CallStatus) Valid() bool {
	switch s {
	case CallStatusCompleted, CallStatusMissed, CallStatusFailed, CallStatusBusy, CallStatusNoAnswer:
		return true
	}
	return false
}

var ErrInvalidCallRecord = errors.New("invalid call record")

// NewCallRecord builds a record ready to be persisted, deriving Duration
// from the start and end times.
func NewCallRecord(callerID, calleeID primitive.ObjectID, start, end time.Time, status CallStatus, now time.Time) (*CallRecord, error) {
	if callerID.IsZero() || calleeID.IsZero() {
		return nil, fmt.Errorf("%w: caller and callee are required", ErrInvalidCallRecord)
	}
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end time are required", ErrInvalidCallRecord)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end time before start time", ErrInvalidCallRecord)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidCallRecord, status)
	}

	return &CallRecord{
		CallerID:  callerID,
		CalleeID:  calleeID,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start).Milliseconds(),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
