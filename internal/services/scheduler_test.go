package services

import (
	"testing"
	"time"

	"birthdaybook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunOnceEndToEnd(t *testing.T) {
	db := openTestDB(t)
	createTestAccount(t, db, "alice")
	createTestBirthday(t, db, "alice", "Bob", 3, 15, models.RelationshipFriend)
	createTestBirthday(t, db, "alice", "Mom", 3, 8, models.RelationshipFamily)

	mailer := &fakeMailer{}
	scheduler := NewReminderScheduler(db, mailer)

	today := date(2025, time.March, 8)
	created, result, err := scheduler.RunOnce(today)
	require.NoError(t, err)
	assert.Equal(t, 2, created) // 7-day for Bob, day-of for Mom
	assert.Equal(t, DispatchResult{Sent: 2}, result)
	assert.ElementsMatch(t, []string{"Bob/7_days", "Mom/day_of"}, mailer.sent)

	// A second run of the same day sends nothing
	created, result, err = scheduler.RunOnce(today)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, DispatchResult{}, result)
	assert.Len(t, mailer.sent, 2)
}

// The materialized calendar day follows the location of the time passed in,
// so the scheduler must hand RunOnce the current time in its configured zone
// rather than the server's.
func TestMaterializeDayFollowsTimeZone(t *testing.T) {
	auckland, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)

	// 09:00 March 9 in Auckland is still 20:00 March 8 in UTC
	instant := time.Date(2025, time.March, 9, 9, 0, 0, 0, auckland)
	require.Equal(t, 8, instant.UTC().Day())

	db := openTestDB(t)
	createTestAccount(t, db, "alice")
	createTestBirthday(t, db, "alice", "Bob", 3, 16, models.RelationshipFriend)

	// In Auckland the birthday is 7 days out; seen as a UTC date it would be 8
	created, err := NewMaterializer(db).MaterializeToday(instant)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	var record models.ReminderRecord
	require.NoError(t, db.First(&record).Error)
	assert.Equal(t, Label7Days, record.Label)

	created, err = NewMaterializer(db).MaterializeToday(instant.UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, created, "the UTC rendering of the same instant is a different day and matches no offset")
}

func TestSchedulerUsesConfiguredZoneForRunDay(t *testing.T) {
	t.Setenv("REMINDER_TIMEZONE", "Pacific/Auckland")

	db := openTestDB(t)
	scheduler := NewReminderScheduler(db, &fakeMailer{})
	require.NotNil(t, scheduler.location)
	assert.Equal(t, "Pacific/Auckland", scheduler.location.String())
}

func TestSchedulerDefaultsToUTC(t *testing.T) {
	t.Setenv("REMINDER_TIMEZONE", "")

	db := openTestDB(t)
	scheduler := NewReminderScheduler(db, &fakeMailer{})
	assert.Equal(t, time.UTC, scheduler.location)
}

func TestSchedulerStartStop(t *testing.T) {
	db := openTestDB(t)
	scheduler := NewReminderScheduler(db, &fakeMailer{})

	require.NoError(t, scheduler.Start())
	scheduler.Stop()
}
