package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"birthdaybook/internal/auth"
	"birthdaybook/internal/database"
	"birthdaybook/internal/models"
	"birthdaybook/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateBirthday adds a new birthday entry for the current user
func CreateBirthday(c *gin.Context) {
	username := auth.GetUsernameFromContext(c)

	var req models.CreateBirthdayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	if err := models.ValidateMonthDay(req.Month, req.Day); err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	birthday := models.Birthday{
		Username:     username,
		Name:         req.Name,
		Month:        req.Month,
		Day:          req.Day,
		Relationship: req.Relationship,
		Note:         req.Note,
	}

	db := database.GetDB()
	if err := db.Create(&birthday).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create birthday", err)
		return
	}

	c.JSON(http.StatusCreated, birthday)
}

// GetBirthdays lists the current user's birthdays with filtering, sorting and pagination
func GetBirthdays(c *gin.Context) {
	username := auth.GetUsernameFromContext(c)
	db := database.GetDB()

	query := db.Model(&models.Birthday{}).Where("username = ?", username)

	if relationship := c.Query("relationship"); relationship != "" {
		rel := models.Relationship(strings.ToLower(relationship))
		if !rel.IsValid() {
			handleError(c, http.StatusBadRequest, "Invalid relationship filter", nil)
			return
		}
		query = query.Where("relationship = ?", rel)
	}

	if monthStr := c.Query("month"); monthStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil || month < 1 || month > 12 {
			handleError(c, http.StatusBadRequest, "Invalid month filter", err)
			return
		}
		query = query.Where("month = ?", month)
	}

	if name := c.Query("name"); name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	// Sorting
	sortParam := c.DefaultQuery("sort", "date")
	switch sortParam {
	case "name":
		query = query.Order("LOWER(name) ASC")
	case "date":
		query = query.Order("month ASC, day ASC, LOWER(name) ASC")
	case "created":
		query = query.Order("created_at DESC")
	default:
		handleError(c, http.StatusBadRequest, "Invalid sort parameter", nil)
		return
	}

	// Pagination
	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 200 {
			handleError(c, http.StatusBadRequest, "Invalid limit parameter", err)
			return
		}
		limit = parsed
	}
	offset := 0
	if offsetStr := c.Query("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil || parsed < 0 {
			handleError(c, http.StatusBadRequest, "Invalid offset parameter", err)
			return
		}
		offset = parsed
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to count birthdays", err)
		return
	}

	var birthdays []models.Birthday
	if err := query.Limit(limit).Offset(offset).Find(&birthdays).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch birthdays", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"birthdays": birthdays,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetBirthday returns a single birthday entry by ID
func GetBirthday(c *gin.Context) {
	username := auth.GetUsernameFromContext(c)

	birthday, ok := findOwnedBirthday(c, username)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, birthday)
}

// UpdateBirthday applies partial updates to a birthday entry
func UpdateBirthday(c *gin.Context) {
	username := auth.GetUsernameFromContext(c)

	birthday, ok := findOwnedBirthday(c, username)
	if !ok {
		return
	}

	var req models.UpdateBirthdayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	if err := models.ValidateMonthDay(req.Month, req.Day); err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	updates := map[string]interface{}{
		"name":         req.Name,
		"month":        req.Month,
		"day":          req.Day,
		"relationship": req.Relationship,
		"note":         req.Note,
	}

	db := database.GetDB()
	if err := db.Model(&birthday).Updates(updates).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update birthday", err)
		return
	}

	c.JSON(http.StatusOK, birthday)
}

// DeleteBirthday removes a birthday entry
func DeleteBirthday(c *gin.Context) {
	username := auth.GetUsernameFromContext(c)

	birthday, ok := findOwnedBirthday(c, username)
	if !ok {
		return
	}

	db := database.GetDB()
	if err := db.Delete(&birthday).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete birthday", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "birthday deleted"})
}

// UploadBirthdayPhoto attaches a photo to a birthday entry
func UploadBirthdayPhoto(c *gin.Context) {
	username := auth.GetUsernameFromContext(c)

	birthday, ok := findOwnedBirthday(c, username)
	if !ok {
		return
	}

	imageService, err := services.NewImageService()
	if err != nil {
		handleError(c, http.StatusServiceUnavailable, "Image uploads are not configured", err)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		handleError(c, http.StatusBadRequest, "Photo file required", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		handleError(c, http.StatusBadRequest, "Failed to read photo file", err)
		return
	}
	defer file.Close()

	if err := imageService.ValidateImageFile(file, 5*1024*1024); err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	url, err := imageService.UploadBirthdayPhoto(file, fileHeader.Filename, birthday.ID.String())
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to upload photo", err)
		return
	}

	db := database.GetDB()
	if err := db.Model(&birthday).Update("photo_url", url).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to save photo URL", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}

type upcomingBirthday struct {
	models.Birthday
	DaysUntil int `json:"days_until"`
}

// GetUpcomingBirthdays lists birthdays occurring within the next N days (default 30)
func GetUpcomingBirthdays(c *gin.Context) {
	username := auth.GetUsernameFromContext(c)

	window := 30
	if windowStr := c.Query("days"); windowStr != "" {
		parsed, err := strconv.Atoi(windowStr)
		if err != nil || parsed < 1 || parsed > 365 {
			handleError(c, http.StatusBadRequest, "Invalid days parameter", err)
			return
		}
		window = parsed
	}

	db := database.GetDB()
	var birthdays []models.Birthday
	if err := db.Where("username = ?", username).Find(&birthdays).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch birthdays", err)
		return
	}

	today := services.BeginningOfDay(time.Now())
	upcoming := make([]upcomingBirthday, 0)
	for _, b := range birthdays {
		days := services.DaysUntilNextOccurrence(b.Month, b.Day, today)
		if days <= window {
			upcoming = append(upcoming, upcomingBirthday{Birthday: b, DaysUntil: days})
		}
	}

	sort.Slice(upcoming, func(i, j int) bool {
		if upcoming[i].DaysUntil != upcoming[j].DaysUntil {
			return upcoming[i].DaysUntil < upcoming[j].DaysUntil
		}
		return strings.ToLower(upcoming[i].Name) < strings.ToLower(upcoming[j].Name)
	})

	c.JSON(http.StatusOK, gin.H{
		"upcoming": upcoming,
		"days":     window,
	})
}

// findOwnedBirthday loads the birthday in the :id param, enforcing ownership.
// Writes the error response itself when the lookup fails.
func findOwnedBirthday(c *gin.Context, username string) (models.Birthday, bool) {
	var birthday models.Birthday

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleError(c, http.StatusBadRequest, "Invalid birthday ID", err)
		return birthday, false
	}

	db := database.GetDB()
	if err := db.Where("id = ? AND username = ?", id, username).First(&birthday).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "Birthday not found", err)
			return birthday, false
		}
		handleError(c, http.StatusInternalServerError, "Failed to fetch birthday", err)
		return birthday, false
	}

	return birthday, true
}
