package bot

import (
	"context"
	"fmt"
)

// Keyboard is the reply-markup attached to an outbound message. The closed
// set below is everything the workflow needs; the transport adapter maps
// each to the platform's markup types.
type Keyboard interface {
	isKeyboard()
}

// ContactKeyboard shows a single button requesting the sender's own contact.
type ContactKeyboard struct {
	Label string
}

// MenuKeyboard shows a persistent grid of text buttons.
type MenuKeyboard struct {
	Rows [][]string
}

// DecisionKeyboard shows an approve/reject pair carrying opaque callback
// payloads.
type DecisionKeyboard struct {
	ApproveLabel string
	ApproveData  string
	RejectLabel  string
	RejectData   string
}

// RemoveKeyboard clears any previously shown reply keyboard.
type RemoveKeyboard struct{}

func (ContactKeyboard) isKeyboard()  {}
func (MenuKeyboard) isKeyboard()     {}
func (DecisionKeyboard) isKeyboard() {}
func (RemoveKeyboard) isKeyboard()   {}

// Message is one outbound text message. Text supports the platform's
// rich-text markers (HTML).
type Message struct {
	ChatID   int64
	Text     string
	Keyboard Keyboard
}

// Transport is the chat-platform collaborator. Every method is a single
// outbound call; failures are returned, never retried here.
type Transport interface {
	SendMessage(ctx context.Context, msg Message) error
	SendPhoto(ctx context.Context, chatID int64, fileRef, caption string) error
	SendDocument(ctx context.Context, chatID int64, fileRef, caption string) error
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error

	// CreateInviteLink creates a single-use, single-member invitation scoped
	// to the group and returns its URL.
	CreateInviteLink(ctx context.Context, chatID int64, name string) (string, error)

	// BanMember and UnbanMember form the platform's "kick" primitive: ban
	// then immediately unban so the member may be re-invited later.
	BanMember(ctx context.Context, chatID, userID int64) error
	UnbanMember(ctx context.Context, chatID, userID int64) error
}

// RelocatedError signals that the platform moved the group to a new identity
// mid-operation. The caller retries once against NewChatID and surfaces a
// configuration-update warning to the administrator.
type RelocatedError struct {
	NewChatID int64
}

func (e *RelocatedError) Error() string {
	return fmt.Sprintf("group relocated to %d", e.NewChatID)
}
