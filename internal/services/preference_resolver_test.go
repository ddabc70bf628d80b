package services

import (
	"testing"

	"birthdaybook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRemindersNilPreferenceUsesDefaults(t *testing.T) {
	resolved := ResolveReminders(nil)

	require.Len(t, resolved, 3)
	offsets := make([]int, 0, len(resolved))
	for _, r := range resolved {
		offsets = append(offsets, r.OffsetDays)
		assert.Equal(t, models.DefaultNotifyTime, r.NotifyTime)
	}
	assert.Equal(t, []int{7, 3, 1}, offsets)
}

func TestResolveRemindersHonorsToggles(t *testing.T) {
	pref := models.DefaultReminderPreference("alice")
	pref.Remind14Days = true
	pref.Remind3Days = false

	resolved := ResolveReminders(&pref)

	labels := make(map[string]int)
	for _, r := range resolved {
		labels[r.Label] = r.OffsetDays
	}
	assert.Equal(t, map[string]int{
		Label14Days: 14,
		Label7Days:  7,
		Label1Day:   1,
	}, labels)
}

func TestResolveRemindersIncludesCustomOffsets(t *testing.T) {
	pref := models.DefaultReminderPreference("alice")
	custom1 := 30
	custom2 := 60
	pref.Custom1Days = &custom1
	pref.Custom2Days = &custom2
	pref.Custom1Time = "18:30"

	resolved := ResolveReminders(&pref)

	byLabel := make(map[string]ResolvedReminder)
	for _, r := range resolved {
		byLabel[r.Label] = r
	}
	require.Contains(t, byLabel, LabelCustom1)
	require.Contains(t, byLabel, LabelCustom2)
	assert.Equal(t, 30, byLabel[LabelCustom1].OffsetDays)
	assert.Equal(t, "18:30", byLabel[LabelCustom1].NotifyTime)
	assert.Equal(t, 60, byLabel[LabelCustom2].OffsetDays)
	assert.Equal(t, models.DefaultNotifyTime, byLabel[LabelCustom2].NotifyTime)
}

func TestResolveRemindersLabelsAreUnique(t *testing.T) {
	pref := models.DefaultReminderPreference("alice")
	pref.Remind14Days = true
	custom1 := 2
	pref.Custom1Days = &custom1

	resolved := ResolveReminders(&pref)

	seen := make(map[string]bool)
	for _, r := range resolved {
		assert.False(t, seen[r.Label], "duplicate label %s", r.Label)
		seen[r.Label] = true
	}
}

func TestEnsurePreferenceCreatesDefaultRow(t *testing.T) {
	db := openTestDB(t)
	createTestAccount(t, db, "alice")

	pref, err := EnsurePreference(db, "alice")
	require.NoError(t, err)
	assert.True(t, pref.IsEnabled())
	assert.True(t, pref.Remind7Days)
	assert.True(t, pref.Remind3Days)
	assert.True(t, pref.Remind1Day)
	assert.False(t, pref.Remind14Days)

	var count int64
	require.NoError(t, db.Model(&models.ReminderPreference{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// A second call reads the existing row instead of creating another
	again, err := EnsurePreference(db, "alice")
	require.NoError(t, err)
	assert.Equal(t, pref.Username, again.Username)
	require.NoError(t, db.Model(&models.ReminderPreference{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
