package handlers

import (
	"net/http"
	"strconv"

	"birthdaybook/internal/auth"
	"birthdaybook/internal/models"
	"birthdaybook/internal/services"

	"github.com/gin-gonic/gin"
)

var chatService *services.ChatService

// InitChatService wires the chat service used by the chat endpoints
func InitChatService(s *services.ChatService) {
	chatService = s
}

// Chat handles a single chatbot message and returns the assistant reply
func Chat(c *gin.Context) {
	username := auth.GetUsernameFromContext(c)

	if chatService == nil {
		handleError(c, http.StatusServiceUnavailable, "Chat is not available", nil)
		return
	}

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	reply, intent, err := chatService.HandleMessage(c.Request.Context(), username, req.Message)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to process message", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply":  reply,
		"intent": string(intent),
	})
}

// ChatHistory returns the user's recent chat messages, oldest first
func ChatHistory(c *gin.Context) {
	username := auth.GetUsernameFromContext(c)

	if chatService == nil {
		handleError(c, http.StatusServiceUnavailable, "Chat is not available", nil)
		return
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 200 {
			handleError(c, http.StatusBadRequest, "Invalid limit parameter", err)
			return
		}
		limit = parsed
	}

	messages, err := chatService.History(username, limit)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch chat history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
