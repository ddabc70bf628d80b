package services

import (
	"fmt"
	"os"
	"time"

	"birthdaybook/internal/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService sends transactional email through SendGrid. It implements
// the Mailer interface for the reminder dispatcher.
type EmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	fromEmail := os.Getenv("SENDGRID_NOTIFICATIONS_FROM_EMAIL")
	fromName := os.Getenv("SENDGRID_FROM_NAME")

	client := sendgrid.NewSendClient(apiKey)

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// SendBirthdayReminder emails the account owner about an upcoming birthday
func (s *EmailService) SendBirthdayReminder(account models.Account, birthday models.Birthday, label string, daysUntil int) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(account.Username, account.Email)

	dateStr := fmt.Sprintf("%s %d", time.Month(birthday.Month).String(), birthday.Day)

	var subject string
	switch {
	case daysUntil == 0:
		subject = fmt.Sprintf("It's %s's birthday today!", birthday.Name)
	case daysUntil == 1:
		subject = fmt.Sprintf("%s's birthday is tomorrow", birthday.Name)
	default:
		subject = fmt.Sprintf("%s's birthday is in %d days", birthday.Name, daysUntil)
	}

	plainContent := fmt.Sprintf("Hello %s, %s's birthday (%s) is coming up on %s. Don't forget!",
		account.Username, birthday.Name, birthday.Relationship, dateStr)

	htmlContent := fmt.Sprintf("<p>Hello %s,</p><p><strong>%s</strong>'s birthday (%s) is coming up on %s.</p><p>Don't forget!</p>",
		account.Username, birthday.Name, birthday.Relationship, dateStr)

	message := mail.NewSingleEmail(from, subject, to, plainContent, htmlContent)

	response, err := s.client.Send(message)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email to %s: %d", account.Email, response.StatusCode)
	}

	return nil
}

// SendWelcomeEmail greets a newly registered user
func (s *EmailService) SendWelcomeEmail(email, username string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(username, email)
	subject := "Welcome to Birthdaybook!"
	plainContent := fmt.Sprintf("Hi %s, your account is ready. Add a few birthdays and we'll remind you before each one.", username)
	htmlContent := fmt.Sprintf("<p>Hi %s,</p><p>Your account is ready. Add a few birthdays and we'll remind you before each one.</p>", username)

	message := mail.NewSingleEmail(from, subject, to, plainContent, htmlContent)
	_, err := s.client.Send(message)
	return err
}
