package handlers

import (
	"net/http"
	"time"

	"birthdaybook/internal/auth"
	"birthdaybook/internal/database"
	"birthdaybook/internal/models"
	"birthdaybook/internal/services"

	"github.com/gin-gonic/gin"
)

// GetPreferences returns the current user's reminder settings, creating the
// default row on first access.
func GetPreferences(c *gin.Context) {
	username := auth.GetUsernameFromContext(c)

	pref, err := services.EnsurePreference(database.GetDB(), username)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to load reminder preferences", err)
		return
	}

	c.JSON(http.StatusOK, pref)
}

// UpdatePreferences replaces the current user's reminder settings. Invalid
// combinations (custom offsets colliding with fixed ones, out-of-range days)
// are rejected before anything is persisted.
func UpdatePreferences(c *gin.Context) {
	username := auth.GetUsernameFromContext(c)

	var req models.UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			handleError(c, http.StatusBadRequest, "Invalid timezone", err)
			return
		}
	}

	db := database.GetDB()
	pref, err := services.EnsurePreference(db, username)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to load reminder preferences", err)
		return
	}

	if req.Enabled != nil {
		pref.Enabled = req.Enabled
	}
	pref.Remind14Days = req.Remind14Days
	pref.Remind7Days = req.Remind7Days
	pref.Remind3Days = req.Remind3Days
	pref.Remind1Day = req.Remind1Day
	if req.Time14Days != "" {
		pref.Time14Days = req.Time14Days
	}
	if req.Time7Days != "" {
		pref.Time7Days = req.Time7Days
	}
	if req.Time3Days != "" {
		pref.Time3Days = req.Time3Days
	}
	if req.Time1Day != "" {
		pref.Time1Day = req.Time1Day
	}
	pref.Custom1Days = req.Custom1Days
	pref.Custom2Days = req.Custom2Days
	if req.Custom1Time != "" {
		pref.Custom1Time = req.Custom1Time
	}
	if req.Custom2Time != "" {
		pref.Custom2Time = req.Custom2Time
	}
	if req.Timezone != "" {
		pref.Timezone = req.Timezone
	}
	if req.Frequency != "" {
		pref.Frequency = req.Frequency
	}

	// Validate before touching the database so a bad request leaves the
	// stored row untouched.
	if err := pref.Validate(); err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	if err := db.Save(pref).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to save reminder preferences", err)
		return
	}

	c.JSON(http.StatusOK, pref)
}
