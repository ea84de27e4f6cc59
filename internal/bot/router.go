// Package bot contains the platform-agnostic conversation logic: event
// model, handlers and the router that wires them together. The Telegram
// specifics live in the telegram subpackage behind the Transport interface.
package bot

import (
	"context"
	"errors"
	"log/slog"

	"village-gate/internal/conversation"
	"village-gate/pkg/platform/sentinel"
)

// Router dispatches decoded platform events to the matching handler. It is
// the single place that consults conversation state to decide who owns an
// otherwise ambiguous event.
type Router struct {
	registration *Registration
	review       *Review
	search       *Search
	admin        *Admin
	states       conversation.Store
	logger       *slog.Logger
}

func NewRouter(registration *Registration, review *Review, search *Search, admin *Admin, states conversation.Store, logger *slog.Logger) *Router {
	return &Router{
		registration: registration,
		review:       review,
		search:       search,
		admin:        admin,
		states:       states,
		logger:       logger,
	}
}

// Dispatch routes one event. Handler errors are logged here so a single
// failing update never takes the polling loop down.
func (r *Router) Dispatch(ctx context.Context, event Event) {
	var err error
	switch ev := event.(type) {
	case Command:
		err = r.command(ctx, ev)
	case Decision:
		err = r.review.Decide(ctx, ev)
	case Contact:
		err = r.contact(ctx, ev)
	case Attachment:
		err = r.attachment(ctx, ev)
	case Text:
		err = r.text(ctx, ev)
	}
	if err != nil {
		r.logger.Error("handle event", "event", eventName(event), "error", err)
	}
}

func (r *Router) command(ctx context.Context, cmd Command) error {
	switch cmd.Name {
	case "start":
		return r.registration.Start(ctx, cmd)
	case "admin":
		return r.admin.Menu(ctx, cmd)
	case "stats":
		return r.admin.Stats(ctx, cmd)
	case "list_users":
		return r.admin.ListUsers(ctx, cmd)
	case "remove_user":
		return r.admin.RemoveUser(ctx, cmd)
	case "search", "search_plot", "search_phone", "search_name":
		return r.search.Command(ctx, cmd)
	default:
		// Unknown commands are ignored.
		return nil
	}
}

func (r *Router) contact(ctx context.Context, ev Contact) error {
	state, ok, err := r.state(ctx, ev.Sender.ID)
	if err != nil || !ok {
		return err
	}
	if state.Step != conversation.StepPhone {
		return nil
	}
	return r.registration.ResumeContact(ctx, ev, state)
}

func (r *Router) attachment(ctx context.Context, ev Attachment) error {
	state, ok, err := r.state(ctx, ev.Sender.ID)
	if err != nil || !ok {
		return err
	}
	if state.Step != conversation.StepDocument {
		return nil
	}
	return r.registration.ResumeAttachment(ctx, ev, state)
}

func (r *Router) text(ctx context.Context, ev Text) error {
	// Menu buttons take precedence over any parked conversation so an admin
	// can always switch search modes.
	if handled, err := r.search.MenuButton(ctx, ev); handled {
		return err
	}

	state, ok, err := r.state(ctx, ev.Sender.ID)
	if err != nil || !ok {
		return err
	}
	switch {
	case state.Step.Registration():
		return r.registration.ResumeText(ctx, ev, state)
	case state.Step.Search():
		return r.search.ResumeQuery(ctx, ev, state)
	default:
		return nil
	}
}

func (r *Router) state(ctx context.Context, id int64) (*conversation.State, bool, error) {
	state, err := r.states.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return state, true, nil
}

func eventName(event Event) string {
	switch event.(type) {
	case Command:
		return "command"
	case Decision:
		return "decision"
	case Contact:
		return "contact"
	case Attachment:
		return "attachment"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}
