package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"village-gate/internal/application/models"
	"village-gate/internal/application/service"
	"village-gate/internal/conversation"
	"village-gate/internal/security"
	"village-gate/pkg/platform/sentinel"
)

// Registration drives the four-step intake conversation and produces a
// stored application plus admin notifications on completion.
type Registration struct {
	transport Transport
	states    conversation.Store
	apps      *service.Service
	adminIDs  []int64
	logger    *slog.Logger
}

// NewRegistration constructs the intake handler. adminIDs receive the
// submission notification.
func NewRegistration(transport Transport, states conversation.Store, apps *service.Service, adminIDs []int64, logger *slog.Logger) *Registration {
	return &Registration{
		transport: transport,
		states:    states,
		apps:      apps,
		adminIDs:  adminIDs,
		logger:    logger,
	}
}

// Start handles the entry command. An applicant with a pending or approved
// application is short-circuited with a status message; a rejected one is
// reset into the flow; an unknown one enters directly.
func (h *Registration) Start(ctx context.Context, cmd Command) error {
	app, err := h.apps.Get(ctx, cmd.Sender.ID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return fmt.Errorf("check applicant status: %w", err)
		}
		return h.enter(ctx, cmd)
	}

	switch app.Status {
	case models.StatusApproved:
		return h.transport.SendMessage(ctx, Message{ChatID: cmd.ChatID, Text: msgAlreadyApproved})
	case models.StatusPending:
		return h.transport.SendMessage(ctx, Message{ChatID: cmd.ChatID, Text: msgPendingReview})
	default: // rejected: allow a fresh attempt
		if err := h.transport.SendMessage(ctx, Message{ChatID: cmd.ChatID, Text: msgPreviouslyRejected}); err != nil {
			return err
		}
		return h.enter(ctx, cmd)
	}
}

func (h *Registration) enter(ctx context.Context, cmd Command) error {
	if err := h.states.Set(ctx, cmd.Sender.ID, &conversation.State{Step: conversation.StepFullName}); err != nil {
		return fmt.Errorf("enter registration: %w", err)
	}
	h.logger.Info("registration started", "applicant_id", cmd.Sender.ID)
	return h.transport.SendMessage(ctx, Message{ChatID: cmd.ChatID, Text: msgWelcome})
}

// ResumeText advances a parked registration conversation with a text input.
func (h *Registration) ResumeText(ctx context.Context, ev Text, state *conversation.State) error {
	switch state.Step {
	case conversation.StepFullName:
		return h.collectFullName(ctx, ev, state)
	case conversation.StepPhone:
		return h.collectPhone(ctx, ev.Sender, ev.ChatID, ev.Body, state, true)
	case conversation.StepPlotNumber:
		return h.collectPlotNumber(ctx, ev, state)
	case conversation.StepDocument:
		// Only an attachment moves the conversation forward here.
		return h.transport.SendMessage(ctx, Message{ChatID: ev.ChatID, Text: msgNotAttachment})
	default:
		return nil
	}
}

func (h *Registration) collectFullName(ctx context.Context, ev Text, state *conversation.State) error {
	ok, reason := security.ValidateFullName(ev.Body)
	if !ok {
		return h.transport.SendMessage(ctx, Message{ChatID: ev.ChatID, Text: "❌ " + reason})
	}
	fullName := security.SanitizeText(ev.Body, security.MaxFullNameLength)

	state.FullName = fullName
	state.Step = conversation.StepPhone
	if err := h.states.Set(ctx, ev.Sender.ID, state); err != nil {
		return fmt.Errorf("store full name: %w", err)
	}

	h.logger.Info("full name collected", "applicant_id", ev.Sender.ID)
	return h.transport.SendMessage(ctx, Message{
		ChatID:   ev.ChatID,
		Text:     fmt.Sprintf("✅ ФИО сохранено: %s\n\n%s", fullName, msgAskPhone),
		Keyboard: ContactKeyboard{Label: "📱 Отправить номер телефона"},
	})
}

// ResumeContact advances the phone step with a platform-verified contact
// share. A contact belonging to someone else is rejected, state unchanged.
func (h *Registration) ResumeContact(ctx context.Context, ev Contact, state *conversation.State) error {
	if state.Step != conversation.StepPhone {
		return nil
	}
	if ev.OwnerID != ev.Sender.ID {
		return h.transport.SendMessage(ctx, Message{ChatID: ev.ChatID, Text: msgForeignPhone})
	}
	return h.collectPhone(ctx, ev.Sender, ev.ChatID, ev.Phone, state, false)
}

func (h *Registration) collectPhone(ctx context.Context, sender Sender, chatID int64, raw string, state *conversation.State, typed bool) error {
	phone := security.NormalizePhone(raw)
	if ok, reason := security.ValidatePhone(phone); !ok {
		text := "❌ " + reason
		if typed {
			text += "\nПожалуйста, используйте кнопку 'Отправить номер телефона' или введите номер в формате +7XXXXXXXXXX"
		}
		return h.transport.SendMessage(ctx, Message{ChatID: chatID, Text: text})
	}

	state.Phone = phone
	state.Step = conversation.StepPlotNumber
	if err := h.states.Set(ctx, sender.ID, state); err != nil {
		return fmt.Errorf("store phone: %w", err)
	}

	h.logger.Info("phone collected", "applicant_id", sender.ID)
	return h.transport.SendMessage(ctx, Message{
		ChatID:   chatID,
		Text:     fmt.Sprintf("✅ Номер телефона сохранен: %s\n\n%s", phone, msgAskPlot),
		Keyboard: RemoveKeyboard{},
	})
}

func (h *Registration) collectPlotNumber(ctx context.Context, ev Text, state *conversation.State) error {
	ok, reason := security.ValidatePlotNumber(ev.Body)
	if !ok {
		return h.transport.SendMessage(ctx, Message{ChatID: ev.ChatID, Text: "❌ " + reason})
	}
	plot := security.SanitizeText(ev.Body, security.MaxPlotNumberLength)

	state.PlotNumber = plot
	state.Step = conversation.StepDocument
	if err := h.states.Set(ctx, ev.Sender.ID, state); err != nil {
		return fmt.Errorf("store plot number: %w", err)
	}

	h.logger.Info("plot number collected", "applicant_id", ev.Sender.ID)
	return h.transport.SendMessage(ctx, Message{
		ChatID: ev.ChatID,
		Text:   fmt.Sprintf("✅ Номер участка сохранен: %s\n\n%s", plot, msgAskDocument),
	})
}

// ResumeAttachment completes the conversation: validates the uploaded
// artifact, persists the application and notifies every administrator.
func (h *Registration) ResumeAttachment(ctx context.Context, ev Attachment, state *conversation.State) error {
	if state.Step != conversation.StepDocument {
		return nil
	}

	isDocument := ev.Kind == AttachmentDocument
	if ok, reason := security.ValidateFileExtension(ev.Filename, isDocument); !ok {
		return h.transport.SendMessage(ctx, Message{ChatID: ev.ChatID, Text: "❌ " + reason})
	}
	if ok, reason := security.ValidateFileSize(ev.Size); !ok {
		return h.transport.SendMessage(ctx, Message{ChatID: ev.ChatID, Text: "❌ " + reason})
	}

	if state.FullName == "" || state.Phone == "" || state.PlotNumber == "" {
		// State corruption: abort to a clean slate rather than persist a
		// partial application.
		if err := h.states.Clear(ctx, ev.Sender.ID); err != nil {
			h.logger.Error("clear corrupted conversation", "applicant_id", ev.Sender.ID, "error", err)
		}
		return h.transport.SendMessage(ctx, Message{ChatID: ev.ChatID, Text: msgStateCorrupted})
	}

	app, err := h.apps.Submit(ctx, service.Submission{
		ApplicantID: ev.Sender.ID,
		Username:    security.SanitizeText(ev.Sender.Username, 64),
		FullName:    state.FullName,
		Phone:       state.Phone,
		PlotNumber:  state.PlotNumber,
		DocumentRef: ev.FileRef,
	})
	if err != nil {
		h.logger.Error("persist application", "applicant_id", ev.Sender.ID, "error", err)
		// Conversation stays parked so the applicant can retry the upload.
		return h.transport.SendMessage(ctx, Message{ChatID: ev.ChatID, Text: msgSubmitFailed})
	}

	h.notifyAdmins(ctx, app, ev.Kind)

	if err := h.states.Clear(ctx, ev.Sender.ID); err != nil {
		h.logger.Error("clear conversation after submit", "applicant_id", ev.Sender.ID, "error", err)
	}
	return h.transport.SendMessage(ctx, Message{ChatID: ev.ChatID, Text: msgSubmitted})
}

// notifyAdmins sends the application summary, the decision buttons and the
// uploaded artifact to every configured administrator. A failure for one
// admin is logged and does not stop delivery to the others.
func (h *Registration) notifyAdmins(ctx context.Context, app *models.Application, kind AttachmentKind) {
	keyboard := DecisionKeyboard{
		ApproveLabel: "✅ Одобрить",
		ApproveData:  fmt.Sprintf("approve:%d", app.ApplicantID),
		RejectLabel:  "❌ Отклонить",
		RejectData:   fmt.Sprintf("reject:%d", app.ApplicantID),
	}
	notice := formatSubmissionNotice(app)

	for _, adminID := range h.adminIDs {
		if err := h.transport.SendMessage(ctx, Message{ChatID: adminID, Text: notice, Keyboard: keyboard}); err != nil {
			h.logger.Error("notify admin", "admin_id", adminID, "applicant_id", app.ApplicantID, "error", err)
			continue
		}
		var err error
		if kind == AttachmentPhoto {
			err = h.transport.SendPhoto(ctx, adminID, app.DocumentRef, docCaption)
		} else {
			err = h.transport.SendDocument(ctx, adminID, app.DocumentRef, docCaption)
		}
		if err != nil {
			h.logger.Error("deliver artifact to admin", "admin_id", adminID, "applicant_id", app.ApplicantID, "error", err)
		}
	}
}
