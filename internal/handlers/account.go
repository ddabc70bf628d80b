package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode"

	"birthdaybook/internal/auth"
	"birthdaybook/internal/database"
	"birthdaybook/internal/models"
	"birthdaybook/internal/services"
	"birthdaybook/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// validatePassword checks if password meets security requirements
func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	hasLetter := false
	hasNumber := false

	for _, char := range password {
		if unicode.IsLetter(char) {
			hasLetter = true
		} else if unicode.IsNumber(char) {
			hasNumber = true
		}

		if hasLetter && hasNumber {
			return nil
		}
	}

	return fmt.Errorf("password must contain at least one letter and one number")
}

// CreateAccount handles new user registration
func CreateAccount(c *gin.Context) {
	var req models.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	if err := validatePassword(req.Password); err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			handleError(c, http.StatusBadRequest, "Invalid timezone", err)
			return
		}
	}

	// Password hashing happens in the Account model's BeforeCreate hook
	account := models.Account{
		Username:   req.Username,
		Email:      req.Email,
		HashedPass: req.Password,
		Timezone:   req.Timezone,
	}

	db := database.GetDB()
	if err := db.Create(&account).Error; err != nil {
		// Check for common database errors like duplicate usernames
		if strings.Contains(err.Error(), "duplicate key") {
			if strings.Contains(err.Error(), "username") {
				handleError(c, http.StatusConflict, "Username already exists", err)
			} else if strings.Contains(err.Error(), "email") {
				handleError(c, http.StatusConflict, "Email already in use", err)
			} else {
				handleError(c, http.StatusConflict, "Account creation failed: duplicate data", err)
			}
			return
		}

		handleError(c, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	if err := services.NewEmailService().SendWelcomeEmail(account.Email, account.Username); err != nil {
		log.Printf("Warning: Failed to send welcome email to %s: %v", account.Email, err)
	}

	c.JSON(http.StatusCreated, account)
}

// Login handles password authentication and issues a JWT token cookie
func Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid login request", err)
		return
	}

	db := database.GetDB()
	var account models.Account
	if err := db.Where("username = ?", req.Username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			recordLoginAttempt(c, req.Username, false)
			handleError(c, http.StatusUnauthorized, "Invalid credentials", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Login attempt failed", err)
		return
	}

	if !account.VerifyPassword(req.Password) {
		recordLoginAttempt(c, req.Username, false)
		handleError(c, http.StatusUnauthorized, "Invalid credentials",
			fmt.Errorf("password verification failed for user %s", req.Username))
		return
	}

	token, err := auth.GenerateToken(account.Username)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	// Cookie lifetime matches the token's so neither outlives the other
	expiry, err := auth.TokenDuration()
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	secure := gin.Mode() != gin.DebugMode
	c.SetCookie(
		auth.TokenCookieName,
		token,
		int(expiry.Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly - not accessible via JavaScript
	)

	db.Model(&account).Update("last_login", time.Now())
	recordLoginAttempt(c, account.Username, true)

	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"user": gin.H{
			"username": account.Username,
			"email":    account.Email,
		},
	})
}

// recordLoginAttempt writes an audit row; failures are logged, not fatal
func recordLoginAttempt(c *gin.Context, username string, success bool) {
	db := database.GetDB()
	entry := models.LoginLog{
		Username:  username,
		ClientIP:  utils.GetRealClientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Success:   success,
		Timestamp: time.Now(),
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("Warning: Failed to record login attempt for %s: %v", username, err)
	}
}

// Logout clears the token cookie and any Google session
func Logout(c *gin.Context) {
	c.SetCookie(auth.TokenCookieName, "", -1, "/", "", false, true)
	auth.DeleteSession(c)
	c.JSON(http.StatusOK, gin.H{"message": "logout successful"})
}

// GetCurrentUser returns the currently authenticated user
func GetCurrentUser(c *gin.Context) {
	username := auth.GetUsernameFromContext(c)
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	db := database.GetDB()
	var account models.Account
	if err := db.Where("username = ?", username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "Account not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to retrieve account", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":    account.Username,
		"email":       account.Email,
		"full_name":   account.FullName,
		"avatar_url":  account.AvatarURL,
		"timezone":    account.Timezone,
		"date_joined": account.DateJoined,
		"last_login":  account.LastLogin,
	})
}

// UpdateProfile updates the mutable profile fields of the current user
func UpdateProfile(c *gin.Context) {
	username := auth.GetUsernameFromContext(c)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	updates := map[string]interface{}{}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.FullName != "" {
		updates["full_name"] = req.FullName
	}
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			handleError(c, http.StatusBadRequest, "Invalid timezone", err)
			return
		}
		updates["timezone"] = req.Timezone
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "nothing to update"})
		return
	}

	db := database.GetDB()
	result := db.Model(&models.Account{}).Where("username = ?", username).Updates(updates)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "duplicate key") {
			handleError(c, http.StatusConflict, "Email already in use", result.Error)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to update profile", result.Error)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
}

// UploadAvatar uploads a profile image and stores its URL on the account
func UploadAvatar(c *gin.Context) {
	username := auth.GetUsernameFromContext(c)

	imageService, err := services.NewImageService()
	if err != nil {
		handleError(c, http.StatusServiceUnavailable, "Image uploads are not configured", err)
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		handleError(c, http.StatusBadRequest, "Avatar file required", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		handleError(c, http.StatusBadRequest, "Failed to read avatar file", err)
		return
	}
	defer file.Close()

	if err := imageService.ValidateImageFile(file, 5*1024*1024); err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	url, err := imageService.UploadAvatar(file, fileHeader.Filename, username)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to upload avatar", err)
		return
	}

	db := database.GetDB()
	if err := db.Model(&models.Account{}).Where("username = ?", username).Update("avatar_url", url).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to save avatar URL", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}
