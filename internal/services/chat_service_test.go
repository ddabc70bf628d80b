package services

import (
	"context"
	"testing"

	"birthdaybook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatAddBirthday(t *testing.T) {
	db := openTestDB(t)
	createTestAccount(t, db, "alice")
	svc := NewChatService(db, nil)

	reply, intent, err := svc.HandleMessage(context.Background(), "alice", "add a birthday for Bob on March 15, he's a friend")
	require.NoError(t, err)
	assert.Equal(t, IntentAddBirthday, intent)
	assert.Contains(t, reply, "Bob")
	assert.Contains(t, reply, "March 15")

	var birthday models.Birthday
	require.NoError(t, db.Where("username = ?", "alice").First(&birthday).Error)
	assert.Equal(t, "Bob", birthday.Name)
	assert.Equal(t, 3, birthday.Month)
	assert.Equal(t, 15, birthday.Day)
	assert.Equal(t, models.RelationshipFriend, birthday.Relationship)
}

func TestChatAddBirthdayMissingDate(t *testing.T) {
	db := openTestDB(t)
	createTestAccount(t, db, "alice")
	svc := NewChatService(db, nil)

	reply, intent, err := svc.HandleMessage(context.Background(), "alice", "add a birthday for Bob")
	require.NoError(t, err)
	assert.Equal(t, IntentAddBirthday, intent)
	assert.Contains(t, reply, "need a name and a date")

	var count int64
	require.NoError(t, db.Model(&models.Birthday{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestChatDeleteBirthday(t *testing.T) {
	db := openTestDB(t)
	createTestAccount(t, db, "alice")
	createTestBirthday(t, db, "alice", "Bob", 3, 15, models.RelationshipFriend)
	svc := NewChatService(db, nil)

	reply, intent, err := svc.HandleMessage(context.Background(), "alice", "delete the birthday for Bob")
	require.NoError(t, err)
	assert.Equal(t, IntentDeleteBirthday, intent)
	assert.Contains(t, reply, "removed Bob's birthday")

	var count int64
	require.NoError(t, db.Model(&models.Birthday{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestChatDeleteUnknownName(t *testing.T) {
	db := openTestDB(t)
	createTestAccount(t, db, "alice")
	svc := NewChatService(db, nil)

	reply, _, err := svc.HandleMessage(context.Background(), "alice", "delete the birthday for Nobody")
	require.NoError(t, err)
	assert.Contains(t, reply, "couldn't find a birthday for Nobody")
}

func TestChatUpdateBirthday(t *testing.T) {
	db := openTestDB(t)
	createTestAccount(t, db, "alice")
	createTestBirthday(t, db, "alice", "Bob", 3, 15, models.RelationshipFriend)
	svc := NewChatService(db, nil)

	reply, intent, err := svc.HandleMessage(context.Background(), "alice", "change the birthday for Bob to April 2")
	require.NoError(t, err)
	assert.Equal(t, IntentUpdateBirthday, intent)
	assert.Contains(t, reply, "April 2")

	var birthday models.Birthday
	require.NoError(t, db.Where("username = ?", "alice").First(&birthday).Error)
	assert.Equal(t, 4, birthday.Month)
	assert.Equal(t, 2, birthday.Day)
}

func TestChatListAndStats(t *testing.T) {
	db := openTestDB(t)
	createTestAccount(t, db, "alice")
	createTestBirthday(t, db, "alice", "Bob", 3, 15, models.RelationshipFriend)
	createTestBirthday(t, db, "alice", "Mom", 6, 20, models.RelationshipFamily)
	svc := NewChatService(db, nil)

	reply, _, err := svc.HandleMessage(context.Background(), "alice", "list my birthdays")
	require.NoError(t, err)
	assert.Contains(t, reply, "2 birthdays")
	assert.Contains(t, reply, "Bob")
	assert.Contains(t, reply, "Mom")

	reply, intent, err := svc.HandleMessage(context.Background(), "alice", "how many birthdays am I tracking")
	require.NoError(t, err)
	assert.Equal(t, IntentStats, intent)
	assert.Contains(t, reply, "friend")
	assert.Contains(t, reply, "family")
}

func TestChatScopedToUser(t *testing.T) {
	db := openTestDB(t)
	createTestAccount(t, db, "alice")
	createTestAccount(t, db, "mallory")
	createTestBirthday(t, db, "alice", "Bob", 3, 15, models.RelationshipFriend)
	svc := NewChatService(db, nil)

	// Another user cannot see or delete alice's entries
	reply, _, err := svc.HandleMessage(context.Background(), "mallory", "delete the birthday for Bob")
	require.NoError(t, err)
	assert.Contains(t, reply, "couldn't find")

	var count int64
	require.NoError(t, db.Model(&models.Birthday{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestChatUnknownWithoutLLM(t *testing.T) {
	db := openTestDB(t)
	createTestAccount(t, db, "alice")
	svc := NewChatService(db, nil)

	reply, intent, err := svc.HandleMessage(context.Background(), "alice", "what's the meaning of life?")
	require.NoError(t, err)
	assert.Equal(t, IntentUnknown, intent)
	assert.Contains(t, reply, "help")
}

func TestChatHistoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	createTestAccount(t, db, "alice")
	svc := NewChatService(db, nil)

	_, _, err := svc.HandleMessage(context.Background(), "alice", "help")
	require.NoError(t, err)

	messages, err := svc.History("alice", 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, models.ChatRoleUser, messages[0].Role)
	assert.Equal(t, models.ChatRoleAssistant, messages[1].Role)
	assert.Equal(t, string(IntentHelp), messages[0].Intent)
}
