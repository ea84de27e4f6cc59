package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"village-gate/internal/application/models"
	"village-gate/internal/application/service"
)

// Review handles the approve/reject decisions admins take on submitted
// applications.
type Review struct {
	transport Transport
	apps      *service.Service
	isAdmin   func(int64) bool
	groupID   int64
	logger    *slog.Logger
}

// NewReview constructs the decision handler. groupID is the chat the
// single-use invite links point into.
func NewReview(transport Transport, apps *service.Service, isAdmin func(int64) bool, groupID int64, logger *slog.Logger) *Review {
	return &Review{
		transport: transport,
		apps:      apps,
		isAdmin:   isAdmin,
		groupID:   groupID,
		logger:    logger,
	}
}

// Decide records the admin's verdict, notifies the applicant and marks the
// admin-side notification message as settled.
func (h *Review) Decide(ctx context.Context, ev Decision) error {
	if !h.isAdmin(ev.Sender.ID) {
		return h.transport.AnswerCallback(ctx, ev.CallbackID, msgDecisionDenied, true)
	}

	if ev.Approve {
		return h.approve(ctx, ev)
	}
	return h.reject(ctx, ev)
}

func (h *Review) approve(ctx context.Context, ev Decision) error {
	app, err := h.apps.Approve(ctx, ev.ApplicantID)
	if err != nil {
		return h.fail(ctx, ev, fmt.Errorf("approve applicant %d: %w", ev.ApplicantID, err))
	}

	if err := h.notifyApproved(ctx, ev, app); err != nil {
		h.logger.Error("notify approved applicant", "applicant_id", app.ApplicantID, "error", err)
	}

	h.settle(ctx, ev, markerApproved)
	return h.transport.AnswerCallback(ctx, ev.CallbackID, ackApproved, true)
}

func (h *Review) reject(ctx context.Context, ev Decision) error {
	app, err := h.apps.Reject(ctx, ev.ApplicantID)
	if err != nil {
		return h.fail(ctx, ev, fmt.Errorf("reject applicant %d: %w", ev.ApplicantID, err))
	}

	if err := h.transport.SendMessage(ctx, Message{ChatID: app.ApplicantID, Text: msgRejectedNotice}); err != nil {
		h.logger.Error("notify rejected applicant", "applicant_id", app.ApplicantID, "error", err)
	}

	h.settle(ctx, ev, markerRejected)
	return h.transport.AnswerCallback(ctx, ev.CallbackID, ackRejected, true)
}

// notifyApproved sends the applicant a single-use invite link, falling back
// to a manual-contact message when the link cannot be created.
func (h *Review) notifyApproved(ctx context.Context, ev Decision, app *models.Application) error {
	link, err := h.createInviteLink(ctx, ev, app.ApplicantID)
	if err != nil {
		h.logger.Error("create invite link", "applicant_id", app.ApplicantID, "error", err)
		return h.transport.SendMessage(ctx, Message{ChatID: app.ApplicantID, Text: msgApprovedManual})
	}
	return h.transport.SendMessage(ctx, Message{
		ChatID: app.ApplicantID,
		Text:   fmt.Sprintf(msgApprovedWithInvite, link),
	})
}

// createInviteLink retries once against the successor chat when the group
// has been migrated to a supergroup, and tells the acting admin to update
// the configured group ID.
func (h *Review) createInviteLink(ctx context.Context, ev Decision, applicantID int64) (string, error) {
	name := fmt.Sprintf("invite-%d", applicantID)

	link, err := h.transport.CreateInviteLink(ctx, h.groupID, name)
	var relocated *RelocatedError
	if errors.As(err, &relocated) {
		h.logger.Warn("group chat relocated", "old_chat_id", h.groupID, "new_chat_id", relocated.NewChatID)
		notice := Message{ChatID: ev.ChatID, Text: fmt.Sprintf(msgGroupRelocated, relocated.NewChatID)}
		if err := h.transport.SendMessage(ctx, notice); err != nil {
			h.logger.Error("report chat relocation", "admin_id", ev.Sender.ID, "error", err)
		}
		return h.transport.CreateInviteLink(ctx, relocated.NewChatID, name)
	}
	return link, err
}

// settle appends the verdict marker to the original notification so other
// admins see the application is already handled. Best effort: the message
// may have been edited or removed meanwhile.
func (h *Review) settle(ctx context.Context, ev Decision, marker string) {
	if err := h.transport.EditMessageText(ctx, ev.ChatID, ev.MessageID, ev.MessageText+marker); err != nil {
		h.logger.Error("settle decision message", "applicant_id", ev.ApplicantID, "error", err)
	}
}

func (h *Review) fail(ctx context.Context, ev Decision, err error) error {
	h.logger.Error("record decision", "applicant_id", ev.ApplicantID, "admin_id", ev.Sender.ID, "error", err)
	return h.transport.AnswerCallback(ctx, ev.CallbackID, msgGenericFailure, true)
}
