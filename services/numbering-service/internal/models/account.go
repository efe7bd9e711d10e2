package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Account struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email         string             `bson:"email" json:"email"`
	Name          string             `bson:"name" json:"name"`
	AccountStatus AccountStatus      `bson:"account_status" json:"accountStatus"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusInactive  AccountStatus = "inactive"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusSuspended, AccountStatusInactive:
		return true
	}
	return false
}

// AccountUpdate carries the fields of a partial update; nil means untouched.
type AccountUpdate struct {
	Name          *string
	Email         *string
	AccountStatus *AccountStatus
}

func (u AccountUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.AccountStatus == nil
}
