package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"birthdaybook/internal/database"
	"birthdaybook/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

var (
	googleOAuthConfig *oauth2.Config
)

// UserInfo represents the user information carried by Google's ID token
type UserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// InitOAuth initializes the Google OAuth configuration
func InitOAuth() error {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, and GOOGLE_REDIRECT_URL must be set")
	}

	googleOAuthConfig = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile", "openid"},
		Endpoint:     google.Endpoint,
	}

	return nil
}

// GetLoginURL returns the Google OAuth login URL with a secure state parameter
func GetLoginURL(c *gin.Context) (string, error) {
	if googleOAuthConfig == nil {
		return "", fmt.Errorf("google sign-in is not configured")
	}

	state, err := SetOAuthState(c)
	if err != nil {
		return "", err
	}

	return googleOAuthConfig.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	), nil
}

// HandleGoogleCallback processes the OAuth callback from Google
func HandleGoogleCallback(c *gin.Context) {
	if googleOAuthConfig == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google sign-in is not configured"})
		c.Abort()
		return
	}

	// Verify state parameter (CSRF protection)
	state := c.Query("state")
	if !VerifyOAuthState(c, state) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state, possible CSRF attack"})
		c.Abort()
		return
	}

	// Exchange auth code for token
	code := c.Query("code")
	token, err := googleOAuthConfig.Exchange(context.Background(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "code exchange failed"})
		c.Abort()
		return
	}

	// Extract and verify the ID token from the token response
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get id_token"})
		c.Abort()
		return
	}

	payload, err := verifyIDToken(rawIDToken, googleOAuthConfig.ClientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to verify id_token: %v", err)})
		c.Abort()
		return
	}

	userInfo := extractUserInfoFromPayload(payload)

	db := database.GetDB()

	// Existing Google account: refresh token material and start a session
	var account models.Account
	if err := db.Where("google_id = ?", userInfo.Sub).First(&account).Error; err == nil {
		if err := SaveRefreshTokenToAccount(db, userInfo.Sub, token); err != nil {
			fmt.Printf("Warning: Failed to save refresh token: %v\n", err)
		}
		finishGoogleLogin(c, db, token, userInfo, account.Username)
		return
	}

	// Same email registered via password login: link the Google identity
	if err := db.Where("email = ?", userInfo.Email).First(&account).Error; err == nil {
		updates := map[string]interface{}{
			"google_id":      userInfo.Sub,
			"email_verified": userInfo.EmailVerified,
		}
		if account.AvatarURL == "" && userInfo.Picture != "" {
			updates["avatar_url"] = userInfo.Picture
		}
		if err := db.Model(&account).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to link google account"})
			c.Abort()
			return
		}
		if err := SaveRefreshTokenToAccount(db, userInfo.Sub, token); err != nil {
			fmt.Printf("Warning: Failed to save refresh token: %v\n", err)
		}
		finishGoogleLogin(c, db, token, userInfo, account.Username)
		return
	}

	// Brand new user: provision an account from the Google profile
	username, err := usernameFromEmail(db, userInfo.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate username"})
		c.Abort()
		return
	}

	newAccount := models.Account{
		Username:      username,
		Email:         userInfo.Email,
		GoogleID:      userInfo.Sub,
		EmailVerified: userInfo.EmailVerified,
		FullName:      userInfo.Name,
		AvatarURL:     userInfo.Picture,
		DateJoined:    time.Now(),
		LastLogin:     time.Now(),
	}

	if err := db.Create(&newAccount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		c.Abort()
		return
	}

	if err := SaveRefreshTokenToAccount(db, userInfo.Sub, token); err != nil {
		fmt.Printf("Warning: Failed to save refresh token: %v\n", err)
	}

	finishGoogleLogin(c, db, token, userInfo, username)
}

func finishGoogleLogin(c *gin.Context, db *gorm.DB, token *oauth2.Token, userInfo *UserInfo, username string) {
	if err := CreateSession(c, token, userInfo.Sub, username); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		c.Abort()
		return
	}

	db.Model(&models.Account{}).Where("username = ?", username).Update("last_login", time.Now())

	redirect := os.Getenv("FRONTEND_URL")
	if redirect == "" {
		redirect = "/"
	}
	c.Redirect(http.StatusTemporaryRedirect, redirect)
}

// usernameFromEmail derives an available username from the email local part
func usernameFromEmail(db *gorm.DB, email string) (string, error) {
	base := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	cleaned := strings.Builder{}
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			cleaned.WriteRune(r)
		}
	}
	candidate := cleaned.String()
	if len(candidate) < 3 {
		candidate = "user" + candidate
	}
	if len(candidate) > 24 {
		candidate = candidate[:24]
	}

	var count int64
	if err := db.Model(&models.Account{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
		return "", err
	}
	if count == 0 {
		return candidate, nil
	}

	suffix, err := GenerateRandomString(6)
	if err != nil {
		return "", err
	}
	return candidate + strings.ToLower(suffix), nil
}

// verifyIDToken verifies the ID token using Google's official library
func verifyIDToken(idToken string, audience string) (*idtoken.Payload, error) {
	payload, err := idtoken.Validate(context.Background(), idToken, audience)
	if err != nil {
		return nil, fmt.Errorf("failed to validate ID token: %w", err)
	}
	return payload, nil
}

// extractUserInfoFromPayload extracts user info from the verified token payload
func extractUserInfoFromPayload(payload *idtoken.Payload) *UserInfo {
	userInfo := &UserInfo{
		Sub: payload.Subject,
	}

	if email, ok := payload.Claims["email"].(string); ok {
		userInfo.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		userInfo.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		userInfo.Picture = picture
	}
	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok {
		userInfo.EmailVerified = emailVerified
	}

	return userInfo
}

// SaveRefreshTokenToAccount encrypts and saves a refresh token to the user's account
func SaveRefreshTokenToAccount(db *gorm.DB, googleID string, token *oauth2.Token) error {
	if token == nil || token.RefreshToken == "" {
		return nil // No refresh token to save
	}

	encryptedToken, err := EncryptRefreshToken(token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	updates := map[string]interface{}{
		"encrypted_refresh_token": encryptedToken,
		"token_expiry":            token.Expiry,
	}

	if err := db.Model(&models.Account{}).
		Where("google_id = ?", googleID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to save refresh token to account: %w", err)
	}

	return nil
}
