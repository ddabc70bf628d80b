package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMonthDay(t *testing.T) {
	assert.NoError(t, ValidateMonthDay(3, 15))
	assert.NoError(t, ValidateMonthDay(1, 31))
	assert.NoError(t, ValidateMonthDay(2, 29)) // leap-day birthdays are storable

	assert.Error(t, ValidateMonthDay(0, 15))
	assert.Error(t, ValidateMonthDay(13, 1))
	assert.Error(t, ValidateMonthDay(2, 30))
	assert.Error(t, ValidateMonthDay(4, 31))
	assert.Error(t, ValidateMonthDay(6, 0))
}

func TestRelationshipIsClose(t *testing.T) {
	assert.True(t, RelationshipFamily.IsClose())
	assert.True(t, RelationshipPartner.IsClose())
	assert.False(t, RelationshipFriend.IsClose())
	assert.False(t, RelationshipColleague.IsClose())
	assert.False(t, RelationshipOther.IsClose())
}

func TestRelationshipIsValid(t *testing.T) {
	assert.True(t, RelationshipFriend.IsValid())
	assert.False(t, Relationship("enemy").IsValid())
	assert.False(t, Relationship("").IsValid())
}
