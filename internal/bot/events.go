package bot

// Inbound events form a closed tagged union decoded once at the transport
// boundary. Handlers never parse raw payload strings; the adapter owning the
// platform connection translates updates into these types.

// Sender identifies who produced an inbound event.
type Sender struct {
	ID       int64
	Username string
}

// Event is one decoded inbound update.
type Event interface {
	isEvent()
}

// Command is a slash command, with any trailing argument text.
type Command struct {
	Sender Sender
	ChatID int64
	Name   string
	Args   string
}

// Text is a plain text message.
type Text struct {
	Sender Sender
	ChatID int64
	Body   string
}

// Contact is a platform-verified contact share. OwnerID is the identity the
// shared phone number belongs to, which may differ from the sender.
type Contact struct {
	Sender  Sender
	ChatID  int64
	Phone   string
	OwnerID int64
}

// AttachmentKind distinguishes photos from generic documents.
type AttachmentKind int

const (
	AttachmentPhoto AttachmentKind = iota
	AttachmentDocument
)

// Attachment is an uploaded photo or document. Filename is empty for photos;
// Size is -1 when the platform did not report one.
type Attachment struct {
	Sender   Sender
	ChatID   int64
	Kind     AttachmentKind
	FileRef  string
	Filename string
	Size     int64
}

// Decision is an admin pressing approve or reject on a notification message.
// MessageID/MessageText reference the notification so it can be edited with
// the outcome marker.
type Decision struct {
	Sender      Sender
	ChatID      int64
	ApplicantID int64
	Approve     bool
	CallbackID  string
	MessageID   int
	MessageText string
}

func (Command) isEvent()    {}
func (Text) isEvent()       {}
func (Contact) isEvent()    {}
func (Attachment) isEvent() {}
func (Decision) isEvent()   {}
