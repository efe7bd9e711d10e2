package database

import (
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrDuplicate = errors.New("duplicate document")
	ErrInvalidID = errors.New("invalid document ID")
)

// ParseID converts a hex string into an ObjectID. Only 24 character hex
// strings are accepted.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// IsDuplicate reports whether err is a unique index violation.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrDuplicate) || mongo.IsDuplicateKeyError(err)
}

// ContainsFold builds a case-insensitive substring match that treats the
// input literally.
func ContainsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
