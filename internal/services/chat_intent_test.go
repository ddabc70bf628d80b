package services

import (
	"testing"

	"birthdaybook/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		message string
		want    Intent
	}{
		{"add a birthday for Alice on March 15", IntentAddBirthday},
		{"remember my mom's birthday", IntentAddBirthday},
		{"delete Bob's birthday", IntentDeleteBirthday},
		{"remove the entry for Carol", IntentDeleteBirthday},
		{"change Alice's birthday to April 2", IntentUpdateBirthday},
		{"list my birthdays", IntentListBirthdays},
		{"show all birthdays", IntentListBirthdays},
		{"who has a birthday coming up", IntentUpcoming},
		{"anything soon?", IntentUpcoming},
		{"how many friends am I tracking", IntentStats},
		{"help", IntentHelp},
		{"what can you do", IntentHelp},
		{"the weather is nice today", IntentUnknown},
		{"", IntentUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyIntent(tc.message))
		})
	}
}

// Overlapping keywords must resolve the same way every time: delete beats
// update beats add.
func TestClassifyIntentPrecedence(t *testing.T) {
	assert.Equal(t, IntentDeleteBirthday, ClassifyIntent("remove the birthday I added for Bob"))
	assert.Equal(t, IntentUpdateBirthday, ClassifyIntent("update the birthday I saved for Alice"))
	assert.Equal(t, IntentDeleteBirthday, ClassifyIntent("delete and update everything"))
}

func TestExtractEntities(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    ChatEntities
	}{
		{
			"month day form",
			"add a birthday for Alice on March 15",
			ChatEntities{Name: "Alice", Month: 3, Day: 15},
		},
		{
			"day month form",
			"save a birthday for Bob on 2nd of April",
			ChatEntities{Name: "Bob", Month: 4, Day: 2},
		},
		{
			"numeric day slash month",
			"birthday for Carol on 15/03",
			ChatEntities{Name: "Carol", Month: 3, Day: 15},
		},
		{
			"relationship word",
			"add my colleague Dave, born June 20",
			ChatEntities{Month: 6, Day: 20, Relationship: models.RelationshipColleague},
		},
		{
			"window in days",
			"show birthdays in the next 14 days",
			ChatEntities{WindowDays: 14},
		},
		{
			"full name",
			"delete the entry for Alice Smith",
			ChatEntities{Name: "Alice Smith"},
		},
		{
			"nothing extractable",
			"hello there",
			ChatEntities{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractEntities(tc.message))
		})
	}
}
