package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"birthdaybook/internal/models"

	"gorm.io/gorm"
)

// ChatService maps free-text requests onto birthday CRUD operations and
// analytics queries. Messages that match no intent fall through to the
// local language model.
type ChatService struct {
	db  *gorm.DB
	llm *LLMClient
}

func NewChatService(db *gorm.DB, llm *LLMClient) *ChatService {
	return &ChatService{db: db, llm: llm}
}

const helpReply = "I can add, update, or delete birthdays, list everyone you're tracking, " +
	"show upcoming birthdays, and give you a breakdown by relationship. " +
	"Try: \"remember the birthday for Alice on March 15, she's a friend\"."

// HandleMessage classifies one user message, executes the matching
// operation, and returns the assistant's reply. Both sides of the exchange
// are persisted to the chat history.
func (s *ChatService) HandleMessage(ctx context.Context, username, message string) (string, Intent, error) {
	intent := ClassifyIntent(message)
	entities := ExtractEntities(message)

	s.saveMessage(username, models.ChatRoleUser, message, intent, &entities)

	var reply string
	var err error
	switch intent {
	case IntentAddBirthday:
		reply, err = s.addBirthday(username, entities)
	case IntentUpdateBirthday:
		reply, err = s.updateBirthday(username, entities)
	case IntentDeleteBirthday:
		reply, err = s.deleteBirthday(username, entities)
	case IntentListBirthdays:
		reply, err = s.listBirthdays(username)
	case IntentUpcoming:
		reply, err = s.upcomingBirthdays(username, entities)
	case IntentStats:
		reply, err = s.relationshipStats(username)
	case IntentHelp:
		reply = helpReply
	default:
		reply, err = s.freeformReply(ctx, username, message)
	}
	if err != nil {
		return "", intent, err
	}

	s.saveMessage(username, models.ChatRoleAssistant, reply, intent, nil)
	return reply, intent, nil
}

// History returns the most recent chat messages for a user, oldest first
func (s *ChatService) History(username string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var messages []models.ChatMessage
	err := s.db.Where("username = ?", username).
		Order("created_at desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *ChatService) saveMessage(username string, role models.ChatRole, content string, intent Intent, entities *ChatEntities) {
	msg := models.ChatMessage{
		Username: username,
		Role:     role,
		Content:  content,
		Intent:   string(intent),
	}
	if entities != nil {
		if raw, err := json.Marshal(entities); err == nil {
			msg.Entities = raw
		}
	}
	if err := s.db.Create(&msg).Error; err != nil {
		log.Printf("Warning: Failed to save chat message for %s: %v", username, err)
	}
}

func (s *ChatService) addBirthday(username string, entities ChatEntities) (string, error) {
	if entities.Name == "" || entities.Month == 0 || entities.Day == 0 {
		return "To add a birthday I need a name and a date, e.g. \"add a birthday for Alice on March 15\".", nil
	}
	if err := models.ValidateMonthDay(entities.Month, entities.Day); err != nil {
		return fmt.Sprintf("That doesn't look like a valid date: %v", err), nil
	}

	relationship := entities.Relationship
	if relationship == "" {
		relationship = models.RelationshipOther
	}

	birthday := models.Birthday{
		Username:     username,
		Name:         entities.Name,
		Month:        entities.Month,
		Day:          entities.Day,
		Relationship: relationship,
	}
	if err := s.db.Create(&birthday).Error; err != nil {
		return "", fmt.Errorf("failed to create birthday: %w", err)
	}

	return fmt.Sprintf("Got it! I'll remember %s's birthday on %s.",
		birthday.Name, formatMonthDay(birthday.Month, birthday.Day)), nil
}

func (s *ChatService) updateBirthday(username string, entities ChatEntities) (string, error) {
	if entities.Name == "" {
		return "Whose birthday should I update? Try \"change the birthday for Alice to April 2\".", nil
	}

	birthday, err := s.findByName(username, entities.Name)
	if err != nil {
		return "", err
	}
	if birthday == nil {
		return fmt.Sprintf("I couldn't find a birthday for %s.", entities.Name), nil
	}

	changed := false
	if entities.Month != 0 && entities.Day != 0 {
		if err := models.ValidateMonthDay(entities.Month, entities.Day); err != nil {
			return fmt.Sprintf("That doesn't look like a valid date: %v", err), nil
		}
		birthday.Month = entities.Month
		birthday.Day = entities.Day
		changed = true
	}
	if entities.Relationship != "" {
		birthday.Relationship = entities.Relationship
		changed = true
	}
	if !changed {
		return fmt.Sprintf("What should I change about %s's birthday? You can give me a new date or relationship.", birthday.Name), nil
	}

	if err := s.db.Save(birthday).Error; err != nil {
		return "", fmt.Errorf("failed to update birthday: %w", err)
	}
	return fmt.Sprintf("Updated %s's birthday to %s (%s).",
		birthday.Name, formatMonthDay(birthday.Month, birthday.Day), birthday.Relationship), nil
}

func (s *ChatService) deleteBirthday(username string, entities ChatEntities) (string, error) {
	if entities.Name == "" {
		return "Whose birthday should I delete?", nil
	}

	birthday, err := s.findByName(username, entities.Name)
	if err != nil {
		return "", err
	}
	if birthday == nil {
		return fmt.Sprintf("I couldn't find a birthday for %s.", entities.Name), nil
	}

	if err := s.db.Delete(birthday).Error; err != nil {
		return "", fmt.Errorf("failed to delete birthday: %w", err)
	}
	return fmt.Sprintf("Done, I removed %s's birthday.", birthday.Name), nil
}

func (s *ChatService) listBirthdays(username string) (string, error) {
	var birthdays []models.Birthday
	if err := s.db.Where("username = ?", username).
		Order("month asc, day asc").
		Find(&birthdays).Error; err != nil {
		return "", err
	}
	if len(birthdays) == 0 {
		return "You're not tracking any birthdays yet. Try \"add a birthday for Alice on March 15\".", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You're tracking %d birthdays:\n", len(birthdays))
	for _, birthday := range birthdays {
		fmt.Fprintf(&b, "- %s — %s (%s)\n", birthday.Name, formatMonthDay(birthday.Month, birthday.Day), birthday.Relationship)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (s *ChatService) upcomingBirthdays(username string, entities ChatEntities) (string, error) {
	window := entities.WindowDays
	if window <= 0 {
		window = 30
	}

	var birthdays []models.Birthday
	if err := s.db.Where("username = ?", username).Find(&birthdays).Error; err != nil {
		return "", err
	}

	today := time.Now()
	type upcoming struct {
		birthday  models.Birthday
		daysUntil int
	}
	var matches []upcoming
	for _, birthday := range birthdays {
		days := DaysUntilNextOccurrence(birthday.Month, birthday.Day, today)
		if days <= window {
			matches = append(matches, upcoming{birthday, days})
		}
	}
	if len(matches) == 0 {
		return fmt.Sprintf("No birthdays in the next %d days.", window), nil
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].daysUntil < matches[j].daysUntil })

	var b strings.Builder
	fmt.Fprintf(&b, "Birthdays in the next %d days:\n", window)
	for _, m := range matches {
		switch m.daysUntil {
		case 0:
			fmt.Fprintf(&b, "- %s — today!\n", m.birthday.Name)
		case 1:
			fmt.Fprintf(&b, "- %s — tomorrow (%s)\n", m.birthday.Name, formatMonthDay(m.birthday.Month, m.birthday.Day))
		default:
			fmt.Fprintf(&b, "- %s — in %d days (%s)\n", m.birthday.Name, m.daysUntil, formatMonthDay(m.birthday.Month, m.birthday.Day))
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (s *ChatService) relationshipStats(username string) (string, error) {
	type relationshipCount struct {
		Relationship models.Relationship
		Count        int64
	}
	var counts []relationshipCount
	err := s.db.Model(&models.Birthday{}).
		Select("relationship, count(*) as count").
		Where("username = ?", username).
		Group("relationship").
		Order("count desc").
		Scan(&counts).Error
	if err != nil {
		return "", err
	}
	if len(counts) == 0 {
		return "You're not tracking any birthdays yet.", nil
	}

	total := int64(0)
	var b strings.Builder
	for _, c := range counts {
		total += c.Count
	}
	fmt.Fprintf(&b, "You're tracking %d birthdays:\n", total)
	for _, c := range counts {
		fmt.Fprintf(&b, "- %s: %d\n", c.Relationship, c.Count)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// freeformReply hands the message to the local model with a little context
// about the user's data.
func (s *ChatService) freeformReply(ctx context.Context, username, message string) (string, error) {
	if s.llm == nil {
		return "I didn't recognise that as a command. Type \"help\" to see what I can do.", nil
	}

	var total int64
	s.db.Model(&models.Birthday{}).Where("username = ?", username).Count(&total)

	prompt := fmt.Sprintf(
		"You are the assistant of a birthday-tracking app. The user is tracking %d birthdays. "+
			"Answer briefly and helpfully. If the request needs an action you cannot take, "+
			"suggest a command like \"add a birthday for Alice on March 15\".\n\nUser: %s",
		total, message)

	reply, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrLLMWarmingUp) {
			return "I'm still warming up my language model. Ask me again in a moment, or try a direct command like \"list my birthdays\".", nil
		}
		log.Printf("Error: LLM generation failed for %s: %v", username, err)
		return "Sorry, I couldn't work that one out. Type \"help\" to see what I can do.", nil
	}
	return strings.TrimSpace(reply), nil
}

func (s *ChatService) findByName(username, name string) (*models.Birthday, error) {
	var birthday models.Birthday
	err := s.db.Where("username = ? AND LOWER(name) = LOWER(?)", username, name).First(&birthday).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &birthday, nil
}

func formatMonthDay(month, day int) string {
	return fmt.Sprintf("%s %d", time.Month(month).String(), day)
}
