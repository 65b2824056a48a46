// Package telegram provides a client for delivering alert notifications via
// the Telegram Bot API. It formats alert records into human-readable messages
// and handles delivery with retry logic for reliability.
package telegram

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/models"
)

// Client handles Telegram notifications
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     3,
		retryDelayBase: time.Second,
	}, nil
}

// NotifyAlert sends a notification for a newly created alert.
func (c *Client) NotifyAlert(alert models.Alert) error {
	msg := tgbotapi.NewMessage(c.chatID, c.formatAlert(alert))
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatAlert formats an alert into a Telegram message
func (c *Client) formatAlert(alert models.Alert) string {
	severityEmoji := "⚠️"
	switch alert.Severity {
	case models.SeverityHigh, models.SeverityCritical:
		severityEmoji = "🚨"
	case models.SeverityLow:
		severityEmoji = "ℹ️"
	}

	title := escapeMarkdownV2(alert.Title)
	description := escapeMarkdownV2(alert.Description)
	severity := escapeMarkdownV2(alert.Severity)
	created := escapeMarkdownV2(alert.CreatedAt.Format("2006-01-02 15:04:05"))

	message := fmt.Sprintf("%s *%s*\n\n", severityEmoji, title)
	message += fmt.Sprintf("%s\n\n", description)
	message += fmt.Sprintf("Severity: *%s*\n", severity)
	message += fmt.Sprintf("📅 %s\n", created)
	return message
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	result := ""
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			result += "\\" + string(char)
		default:
			result += string(char)
		}
	}
	return result
}
