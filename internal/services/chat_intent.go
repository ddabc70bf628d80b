package services

import (
	"regexp"
	"strconv"
	"strings"

	"birthdaybook/internal/models"
)

// Intent is the chatbot's classification of a free-text message
type Intent string

const (
	IntentAddBirthday    Intent = "add_birthday"
	IntentUpdateBirthday Intent = "update_birthday"
	IntentDeleteBirthday Intent = "delete_birthday"
	IntentListBirthdays  Intent = "list_birthdays"
	IntentUpcoming       Intent = "upcoming"
	IntentStats          Intent = "stats"
	IntentHelp           Intent = "help"
	IntentUnknown        Intent = "unknown"
)

type intentRule struct {
	intent   Intent
	keywords []string
}

// intentRules is evaluated top to bottom; the first rule with a keyword hit
// wins. More specific intents sit above broader ones so overlapping keyword
// sets break ties the same way every time.
var intentRules = []intentRule{
	{IntentDeleteBirthday, []string{"delete", "remove", "forget about"}},
	{IntentUpdateBirthday, []string{"update", "change", "edit", "correct", "move"}},
	{IntentAddBirthday, []string{"add", "remember", "save", "new birthday", "birthday is on"}},
	{IntentStats, []string{"how many", "count", "stats", "statistics", "breakdown"}},
	{IntentUpcoming, []string{"upcoming", "coming up", "next birthday", "soon", "this week", "this month"}},
	{IntentListBirthdays, []string{"list", "show", "all birthdays", "who do"}},
	{IntentHelp, []string{"help", "what can you do"}},
}

// ClassifyIntent maps a free-text message to an intent using the precedence
// ordered rule table
func ClassifyIntent(message string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(message))
	for _, rule := range intentRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(normalized, keyword) {
				return rule.intent
			}
		}
	}
	return IntentUnknown
}

// ChatEntities holds the structured fragments extracted from a message
type ChatEntities struct {
	Name         string              `json:"name,omitempty"`
	Month        int                 `json:"month,omitempty"`
	Day          int                 `json:"day,omitempty"`
	Relationship models.Relationship `json:"relationship,omitempty"`
	WindowDays   int                 `json:"window_days,omitempty"`
}

var monthNames = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
}

var (
	// "March 15" / "15 March" / "15th of March"
	monthDayPattern = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})\b`)
	dayMonthPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?(?:\s+of)?\s+(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
	// "15/03" understood as day/month
	numericPattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`)

	// capitalized word after a preposition: "for Alice", "about Bob"
	namePattern = regexp.MustCompile(`(?:for|about|of|called|named)\s+([A-Z][a-z]+(?:\s[A-Z][a-z]+)?)`)

	windowPattern = regexp.MustCompile(`(?i)\b(?:next|within|in)\s+(\d{1,3})\s+days?\b`)
)

var relationshipWords = []models.Relationship{
	models.RelationshipFamily,
	models.RelationshipFriend,
	models.RelationshipColleague,
	models.RelationshipPartner,
}

// ExtractEntities pulls a name, recurring date, relationship, and day window
// out of a message. Fields are zero-valued when absent.
func ExtractEntities(message string) ChatEntities {
	var entities ChatEntities
	lower := strings.ToLower(message)

	if m := monthDayPattern.FindStringSubmatch(message); m != nil {
		entities.Month = monthNames[strings.ToLower(m[1])]
		entities.Day, _ = strconv.Atoi(m[2])
	} else if m := dayMonthPattern.FindStringSubmatch(message); m != nil {
		entities.Day, _ = strconv.Atoi(m[1])
		entities.Month = monthNames[strings.ToLower(m[2])]
	} else if m := numericPattern.FindStringSubmatch(message); m != nil {
		entities.Day, _ = strconv.Atoi(m[1])
		entities.Month, _ = strconv.Atoi(m[2])
	}

	if m := namePattern.FindStringSubmatch(message); m != nil {
		entities.Name = m[1]
	}

	for _, rel := range relationshipWords {
		if strings.Contains(lower, string(rel)) {
			entities.Relationship = rel
			break
		}
	}

	if m := windowPattern.FindStringSubmatch(message); m != nil {
		entities.WindowDays, _ = strconv.Atoi(m[1])
	}

	return entities
}
