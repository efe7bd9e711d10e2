package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VirtualNumber struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Number    string             `bson:"number" json:"number"`
	OwnerID   primitive.ObjectID `bson:"owner_id" json:"ownerId"`
	Status    NumberStatus       `bson:"status" json:"status"`
	Features  []Feature          `bson:"features" json:"features"`
	IsDeleted bool               `bson:"is_deleted" json:"isDeleted"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// VirtualNumberWithOwner is one row of the owner join.
type VirtualNumberWithOwner struct {
	VirtualNumber `bson:",inline"`
	Owner         *Account `bson:"owner" json:"owner"`
}

type NumberStatus string

const (
	NumberStatusActive   NumberStatus = "active"
	NumberStatusInactive NumberStatus = "inactive"
	NumberStatusPending  NumberStatus = "pending"
)

func (s NumberStatus) Valid() bool {
	switch s {
	case NumberStatusActive, NumberStatusInactive, NumberStatusPending:
		return true
	}
	return false
}

type Feature string

const (
	FeatureSMS       Feature = "sms"
	FeatureVoice     Feature = "voice"
	FeatureVoiceMail Feature = "voice-mail"
)

func (f Feature) Valid() bool {
	switch f {
	case FeatureSMS, FeatureVoice, FeatureVoiceMail:
		return true
	}
	return false
}
