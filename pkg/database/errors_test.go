package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestParseID(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := ParseID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	for _, bad := range []string{"", "not-an-id", "12345", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalidID, bad)
	}

	_, err = ParseID("666666666666666666666666")
	assert.NoError(t, err)
}

func TestIsDuplicate(t *testing.T) {
	dupWrite := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}

	assert.True(t, IsDuplicate(dupWrite))
	assert.True(t, IsDuplicate(fmt.Errorf("insert: %w", dupWrite)))
	assert.True(t, IsDuplicate(ErrDuplicate))
	assert.False(t, IsDuplicate(errors.New("boom")))
	assert.False(t, IsDuplicate(nil))
}

func TestContainsFold_QuotesInput(t *testing.T) {
	re := ContainsFold("a.b+c")
	assert.Equal(t, `a\.b\+c`, re.Pattern)
	assert.Equal(t, "i", re.Options)
}
