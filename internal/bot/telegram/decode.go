package telegram

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"village-gate/internal/bot"
)

// decode maps one raw update onto the closed event union. Updates the
// workflow has no use for (edits, channel posts, stickers and the like) are
// dropped here, before any handler runs.
func decode(update tgbotapi.Update) (bot.Event, bool) {
	if update.CallbackQuery != nil {
		return decodeCallback(update.CallbackQuery)
	}
	if update.Message != nil {
		return decodeMessage(update.Message)
	}
	return nil, false
}

func decodeCallback(cb *tgbotapi.CallbackQuery) (bot.Event, bool) {
	if cb.From == nil || cb.Message == nil {
		return nil, false
	}
	verb, rawID, ok := strings.Cut(cb.Data, ":")
	if !ok || (verb != "approve" && verb != "reject") {
		return nil, false
	}
	applicantID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, false
	}
	return bot.Decision{
		Sender:      sender(cb.From),
		ChatID:      cb.Message.Chat.ID,
		ApplicantID: applicantID,
		Approve:     verb == "approve",
		CallbackID:  cb.ID,
		MessageID:   cb.Message.MessageID,
		MessageText: cb.Message.Text,
	}, true
}

func decodeMessage(msg *tgbotapi.Message) (bot.Event, bool) {
	if msg.From == nil || !msg.Chat.IsPrivate() {
		return nil, false
	}
	from := sender(msg.From)

	switch {
	case msg.IsCommand():
		return bot.Command{
			Sender: from,
			ChatID: msg.Chat.ID,
			Name:   msg.Command(),
			Args:   msg.CommandArguments(),
		}, true
	case msg.Contact != nil:
		return bot.Contact{
			Sender:  from,
			ChatID:  msg.Chat.ID,
			Phone:   msg.Contact.PhoneNumber,
			OwnerID: msg.Contact.UserID,
		}, true
	case len(msg.Photo) > 0:
		best := largestPhoto(msg.Photo)
		return bot.Attachment{
			Sender:  from,
			ChatID:  msg.Chat.ID,
			Kind:    bot.AttachmentPhoto,
			FileRef: best.FileID,
			Size:    reportedSize(best.FileSize),
		}, true
	case msg.Document != nil:
		return bot.Attachment{
			Sender:   from,
			ChatID:   msg.Chat.ID,
			Kind:     bot.AttachmentDocument,
			FileRef:  msg.Document.FileID,
			Filename: msg.Document.FileName,
			Size:     reportedSize(msg.Document.FileSize),
		}, true
	case msg.Text != "":
		return bot.Text{Sender: from, ChatID: msg.Chat.ID, Body: msg.Text}, true
	}
	return nil, false
}

func sender(user *tgbotapi.User) bot.Sender {
	return bot.Sender{ID: user.ID, Username: user.UserName}
}

// largestPhoto picks the highest resolution variant of the upload.
func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, ps := range sizes[1:] {
		if ps.Width*ps.Height > best.Width*best.Height {
			best = ps
		}
	}
	return best
}

func reportedSize(size int) int64 {
	if size <= 0 {
		return -1
	}
	return int64(size)
}
