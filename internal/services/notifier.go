package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/fairwayleague/engine/internal/models"
)

// Notifier delivers a regret scenario to its user. Delivery is fire and
// forget: the caller logs a failure and moves on, it never retries the batch.
type Notifier interface {
	SendRegret(ctx context.Context, notification *models.RegretNotification) error
}

// ContactResolver maps an internal user ID to a reachable phone number.
type ContactResolver interface {
	PhoneForUser(ctx context.Context, userID string) (string, error)
}

// MockNotifier for development - logs to console instead of sending real SMS
type MockNotifier struct {
	logger *logrus.Logger
}

func NewMockNotifier(logger *logrus.Logger) *MockNotifier {
	return &MockNotifier{logger: logger}
}

func (n *MockNotifier) SendRegret(ctx context.Context, notification *models.RegretNotification) error {
	n.logger.WithFields(logrus.Fields{
		"user_id":       notification.UserID,
		"league_id":     notification.LeagueID,
		"current_rank":  notification.CurrentRank,
		"would_be_rank": notification.WouldBeRank,
	}).Infof("MOCK notification: %s", regretMessage(notification))
	return nil
}

// TwilioNotifier delivers regret notifications over SMS via Twilio.
type TwilioNotifier struct {
	client     *twilio.RestClient
	contacts   ContactResolver
	fromNumber string
	logger     *logrus.Logger
	breaker    *gobreaker.CircuitBreaker
	limiter    *NotificationRateLimiter
}

// NewTwilioNotifier creates a new Twilio-backed notifier
func NewTwilioNotifier(accountSID, authToken, fromNumber string, contacts ContactResolver, logger *logrus.Logger) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "twilio-notifier",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &TwilioNotifier{
		client:     client,
		contacts:   contacts,
		fromNumber: fromNumber,
		logger:     logger,
		breaker:    breaker,
		limiter:    NewNotificationRateLimiter(3, time.Hour),
	}
}

// SendRegret sends the scenario as one SMS to the user's number.
func (n *TwilioNotifier) SendRegret(ctx context.Context, notification *models.RegretNotification) error {
	if err := n.limiter.Allow(notification.UserID); err != nil {
		return err
	}
	phone, err := n.contacts.PhoneForUser(ctx, notification.UserID)
	if err != nil {
		return fmt.Errorf("no contact for user %s: %w", notification.UserID, err)
	}
	normalized, err := normalizePhoneNumber(phone)
	if err != nil {
		return fmt.Errorf("invalid phone number for user %s: %w", notification.UserID, err)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(normalized)
	params.SetFrom(n.fromNumber)
	params.SetBody(regretMessage(notification))

	_, err = n.breaker.Execute(func() (interface{}, error) {
		return n.client.Api.CreateMessage(params)
	})
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	n.logger.Infof("Sent regret notification to user %s", notification.UserID)
	return nil
}

func regretMessage(n *models.RegretNotification) string {
	return fmt.Sprintf(
		"Woulda-coulda: your earlier lineup would have earned $%s instead of $%s and placed %s instead of %s in your league.",
		formatCents(n.WouldBeTotalCents),
		formatCents(n.CurrentTotalCents),
		ordinal(n.WouldBeRank),
		ordinal(n.CurrentRank),
	)
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
var nonDialable = regexp.MustCompile(`[^\d+]`)
var bareUSNumber = regexp.MustCompile(`^\d{10}$`)

// normalizePhoneNumber ensures phone number is in E.164 format
func normalizePhoneNumber(phone string) (string, error) {
	cleaned := nonDialable.ReplaceAllString(phone, "")
	if len(cleaned) > 0 && cleaned[0] != '+' {
		// Assume US number if no country code
		if !bareUSNumber.MatchString(cleaned) {
			return "", fmt.Errorf("invalid phone number format")
		}
		cleaned = "+1" + cleaned
	}
	if !e164Pattern.MatchString(cleaned) {
		return "", fmt.Errorf("invalid phone number format")
	}
	return cleaned, nil
}
