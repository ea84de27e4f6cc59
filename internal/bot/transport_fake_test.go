package bot

import (
	"context"
	"sync"
)

type sentArtifact struct {
	ChatID  int64
	FileRef string
	Caption string
}

type sentEdit struct {
	ChatID    int64
	MessageID int
	Text      string
}

type sentCallback struct {
	CallbackID string
	Text       string
	Alert      bool
}

type inviteRequest struct {
	ChatID int64
	Name   string
}

type memberAction struct {
	ChatID int64
	UserID int64
}

// fakeTransport records every outbound call and lets tests inject failures.
type fakeTransport struct {
	mu sync.Mutex

	messages  []Message
	photos    []sentArtifact
	documents []sentArtifact
	edits     []sentEdit
	callbacks []sentCallback
	invites   []inviteRequest
	bans      []memberAction
	unbans    []memberAction

	photoErr  error
	inviteErr error
	banErr    error

	inviteLink string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{inviteLink: "https://t.me/+fake"}
}

func (f *fakeTransport) SendMessage(_ context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeTransport) SendPhoto(_ context.Context, chatID int64, fileRef, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.photoErr != nil {
		return f.photoErr
	}
	f.photos = append(f.photos, sentArtifact{ChatID: chatID, FileRef: fileRef, Caption: caption})
	return nil
}

func (f *fakeTransport) SendDocument(_ context.Context, chatID int64, fileRef, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.documents = append(f.documents, sentArtifact{ChatID: chatID, FileRef: fileRef, Caption: caption})
	return nil
}

func (f *fakeTransport) EditMessageText(_ context.Context, chatID int64, messageID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, sentEdit{ChatID: chatID, MessageID: messageID, Text: text})
	return nil
}

func (f *fakeTransport) AnswerCallback(_ context.Context, callbackID, text string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, sentCallback{CallbackID: callbackID, Text: text, Alert: alert})
	return nil
}

func (f *fakeTransport) CreateInviteLink(_ context.Context, chatID int64, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invites = append(f.invites, inviteRequest{ChatID: chatID, Name: name})
	if f.inviteErr != nil {
		err := f.inviteErr
		f.inviteErr = nil
		return "", err
	}
	return f.inviteLink, nil
}

func (f *fakeTransport) BanMember(_ context.Context, chatID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bans = append(f.bans, memberAction{ChatID: chatID, UserID: userID})
	if f.banErr != nil {
		err := f.banErr
		f.banErr = nil
		return err
	}
	return nil
}

func (f *fakeTransport) UnbanMember(_ context.Context, chatID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unbans = append(f.unbans, memberAction{ChatID: chatID, UserID: userID})
	return nil
}

// messagesTo returns the texts sent to one chat, in order.
func (f *fakeTransport) messagesTo(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var texts []string
	for _, msg := range f.messages {
		if msg.ChatID == chatID {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

func (f *fakeTransport) lastMessageTo(chatID int64) (Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].ChatID == chatID {
			return f.messages[i], true
		}
	}
	return Message{}, false
}
