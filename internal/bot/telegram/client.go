// Package telegram adapts the Telegram Bot API to the transport and event
// model of the bot package.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"village-gate/internal/bot"
)

// Dispatcher consumes decoded inbound events.
type Dispatcher interface {
	Dispatch(ctx context.Context, event bot.Event)
}

// Client owns the Bot API connection. It implements bot.Transport for
// outbound calls and runs the long-polling loop for inbound updates.
type Client struct {
	api         *tgbotapi.BotAPI
	pollTimeout time.Duration
	logger      *slog.Logger
}

func New(token string, pollTimeout time.Duration, logger *slog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect bot api: %w", err)
	}
	logger.Info("bot api connected", "username", api.Self.UserName)
	return &Client{api: api, pollTimeout: pollTimeout, logger: logger}, nil
}

// Run long-polls for updates and feeds decoded events to the dispatcher
// until the context is cancelled.
func (c *Client) Run(ctx context.Context, dispatcher Dispatcher) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(c.pollTimeout.Seconds())

	updates := c.api.GetUpdatesChan(cfg)
	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			event, ok := decode(update)
			if !ok {
				continue
			}
			dispatcher.Dispatch(ctx, event)
		}
	}
}

func (c *Client) SendMessage(ctx context.Context, msg bot.Message) error {
	out := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	out.ParseMode = tgbotapi.ModeHTML
	if msg.Keyboard != nil {
		out.ReplyMarkup = replyMarkup(msg.Keyboard)
	}
	_, err := c.api.Send(out)
	return c.wrap("send message", err)
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileRef, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileRef))
	photo.Caption = caption
	_, err := c.api.Send(photo)
	return c.wrap("send photo", err)
}

func (c *Client) SendDocument(ctx context.Context, chatID int64, fileRef, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileRef))
	doc.Caption = caption
	_, err := c.api.Send(doc)
	return c.wrap("send document", err)
}

func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	_, err := c.api.Send(edit)
	return c.wrap("edit message", err)
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	answer := tgbotapi.NewCallback(callbackID, text)
	answer.ShowAlert = alert
	_, err := c.api.Request(answer)
	return c.wrap("answer callback", err)
}

func (c *Client) CreateInviteLink(ctx context.Context, chatID int64, name string) (string, error) {
	cfg := tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: chatID},
		Name:        name,
		MemberLimit: 1,
	}
	resp, err := c.api.Request(cfg)
	if err != nil {
		return "", c.wrap("create invite link", err)
	}
	var link tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("decode invite link: %w", err)
	}
	return link.InviteLink, nil
}

func (c *Client) BanMember(ctx context.Context, chatID, userID int64) error {
	cfg := tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
	}
	_, err := c.api.Request(cfg)
	return c.wrap("ban member", err)
}

func (c *Client) UnbanMember(ctx context.Context, chatID, userID int64) error {
	cfg := tgbotapi.UnbanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		OnlyIfBanned:     true,
	}
	_, err := c.api.Request(cfg)
	return c.wrap("unban member", err)
}

// wrap translates a group-to-supergroup migration into bot.RelocatedError so
// callers can retry against the successor chat.
func (c *Client) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.ResponseParameters.MigrateToChatID != 0 {
		return &bot.RelocatedError{NewChatID: apiErr.ResponseParameters.MigrateToChatID}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func replyMarkup(keyboard bot.Keyboard) interface{} {
	switch kb := keyboard.(type) {
	case bot.ContactKeyboard:
		markup := tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(kb.Label)),
		)
		markup.ResizeKeyboard = true
		markup.OneTimeKeyboard = true
		return markup
	case bot.MenuKeyboard:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
		for _, labels := range kb.Rows {
			row := make([]tgbotapi.KeyboardButton, 0, len(labels))
			for _, label := range labels {
				row = append(row, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, row)
		}
		markup := tgbotapi.NewReplyKeyboard(rows...)
		markup.ResizeKeyboard = true
		return markup
	case bot.DecisionKeyboard:
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(kb.ApproveLabel, kb.ApproveData),
				tgbotapi.NewInlineKeyboardButtonData(kb.RejectLabel, kb.RejectData),
			),
		)
	case bot.RemoveKeyboard:
		return tgbotapi.NewRemoveKeyboard(false)
	default:
		return nil
	}
}
