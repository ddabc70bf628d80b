package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"birthdaybook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent    []string
	failFor map[string]bool
}

func (f *fakeMailer) SendBirthdayReminder(account models.Account, birthday models.Birthday, label string, daysUntil int) error {
	key := fmt.Sprintf("%s/%s", birthday.Name, label)
	if f.failFor[key] {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, key)
	return nil
}

func TestDispatchPendingSendsAndMarksSent(t *testing.T) {
	db := openTestDB(t)
	createTestAccount(t, db, "alice")
	createTestBirthday(t, db, "alice", "Bob", 3, 15, models.RelationshipFriend)

	today := date(2025, time.March, 8)
	_, err := NewMaterializer(db).MaterializeToday(today)
	require.NoError(t, err)

	mailer := &fakeMailer{}
	result, err := NewDispatcher(db, mailer).DispatchPending(today)
	require.NoError(t, err)
	assert.Equal(t, DispatchResult{Sent: 1}, result)
	assert.Equal(t, []string{"Bob/7_days"}, mailer.sent)

	var record models.ReminderRecord
	require.NoError(t, db.First(&record).Error)
	assert.Equal(t, models.ReminderSent, record.Status)
	require.NotNil(t, record.SentAt)
}

func TestDispatchPendingNeverResendsSentReminders(t *testing.T) {
	db := openTestDB(t)
	createTestAccount(t, db, "alice")
	createTestBirthday(t, db, "alice", "Bob", 3, 15, models.RelationshipFriend)

	today := date(2025, time.March, 8)
	_, err := NewMaterializer(db).MaterializeToday(today)
	require.NoError(t, err)

	mailer := &fakeMailer{}
	dispatcher := NewDispatcher(db, mailer)

	_, err = dispatcher.DispatchPending(today)
	require.NoError(t, err)

	result, err := dispatcher.DispatchPending(today)
	require.NoError(t, err)
	assert.Equal(t, DispatchResult{}, result)
	assert.Len(t, mailer.sent, 1)
}

func TestDispatchPendingFailureIsTerminal(t *testing.T) {
	db := openTestDB(t)
	createTestAccount(t, db, "alice")
	createTestBirthday(t, db, "alice", "Bob", 3, 15, models.RelationshipFriend)

	today := date(2025, time.March, 8)
	_, err := NewMaterializer(db).MaterializeToday(today)
	require.NoError(t, err)

	mailer := &fakeMailer{failFor: map[string]bool{"Bob/7_days": true}}
	dispatcher := NewDispatcher(db, mailer)

	result, err := dispatcher.DispatchPending(today)
	require.NoError(t, err)
	assert.Equal(t, DispatchResult{Failed: 1}, result)

	var record models.ReminderRecord
	require.NoError(t, db.First(&record).Error)
	assert.Equal(t, models.ReminderFailed, record.Status)
	assert.Nil(t, record.SentAt)

	// A later run does not retry the failed record
	mailer.failFor = nil
	result, err = dispatcher.DispatchPending(today)
	require.NoError(t, err)
	assert.Equal(t, DispatchResult{}, result)
	assert.Empty(t, mailer.sent)
}

func TestDispatchPendingSkipsSinceDisabledUsers(t *testing.T) {
	db := openTestDB(t)
	createTestAccount(t, db, "alice")
	createTestBirthday(t, db, "alice", "Bob", 3, 15, models.RelationshipFriend)

	today := date(2025, time.March, 8)
	_, err := NewMaterializer(db).MaterializeToday(today)
	require.NoError(t, err)

	// Disable reminders after materialization but before dispatch
	var pref models.ReminderPreference
	require.NoError(t, db.Where("username = ?", "alice").First(&pref).Error)
	disabled := false
	pref.Enabled = &disabled
	require.NoError(t, db.Save(&pref).Error)

	mailer := &fakeMailer{}
	result, err := NewDispatcher(db, mailer).DispatchPending(today)
	require.NoError(t, err)
	assert.Equal(t, DispatchResult{Skipped: 1}, result)
	assert.Empty(t, mailer.sent)

	// The record stays pending rather than failed
	var record models.ReminderRecord
	require.NoError(t, db.First(&record).Error)
	assert.Equal(t, models.ReminderPending, record.Status)
}

func TestDispatchPendingDeletedBirthdayFails(t *testing.T) {
	db := openTestDB(t)
	createTestAccount(t, db, "alice")
	birthday := createTestBirthday(t, db, "alice", "Bob", 3, 15, models.RelationshipFriend)

	today := date(2025, time.March, 8)
	_, err := NewMaterializer(db).MaterializeToday(today)
	require.NoError(t, err)

	require.NoError(t, db.Delete(&birthday).Error)

	mailer := &fakeMailer{}
	result, err := NewDispatcher(db, mailer).DispatchPending(today)
	require.NoError(t, err)
	assert.Equal(t, DispatchResult{Failed: 1}, result)
	assert.Empty(t, mailer.sent)
}
