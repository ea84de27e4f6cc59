package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"village-gate/internal/application/models"
	"village-gate/internal/application/service"
	"village-gate/internal/conversation"
	"village-gate/internal/security"
)

// Search implements the admin lookup console: scoped single-shot commands,
// the interactive menu-driven modes and result rendering with document
// re-delivery.
type Search struct {
	transport Transport
	states    conversation.Store
	apps      *service.Service
	isAdmin   func(int64) bool
	logger    *slog.Logger
}

func NewSearch(transport Transport, states conversation.Store, apps *service.Service, isAdmin func(int64) bool, logger *slog.Logger) *Search {
	return &Search{
		transport: transport,
		states:    states,
		apps:      apps,
		isAdmin:   isAdmin,
		logger:    logger,
	}
}

type searchMode struct {
	step   conversation.Step
	prompt string
	run    func(s *Search, ctx context.Context, query string) ([]*models.Application, error)
}

var searchModes = map[string]searchMode{
	"search_plot": {
		step:   conversation.StepSearchPlot,
		prompt: "Введите номер участка для поиска:",
		run: func(s *Search, ctx context.Context, q string) ([]*models.Application, error) {
			return s.apps.SearchByPlot(ctx, q)
		},
	},
	"search_phone": {
		step:   conversation.StepSearchPhone,
		prompt: "Введите номер телефона для поиска:",
		run: func(s *Search, ctx context.Context, q string) ([]*models.Application, error) {
			return s.apps.SearchByPhone(ctx, q)
		},
	},
	"search_name": {
		step:   conversation.StepSearchName,
		prompt: "Введите ФИО для поиска:",
		run: func(s *Search, ctx context.Context, q string) ([]*models.Application, error) {
			return s.apps.SearchByName(ctx, q)
		},
	},
	"search": {
		step:   conversation.StepSearchUniversal,
		prompt: "Введите запрос для поиска (участок, телефон или ФИО):",
		run: func(s *Search, ctx context.Context, q string) ([]*models.Application, error) {
			return s.apps.SearchAll(ctx, q)
		},
	},
}

// menuButtons maps the admin menu labels onto the command names above.
var menuButtons = map[string]string{
	btnSearchPlot:      "search_plot",
	btnSearchPhone:     "search_phone",
	btnSearchName:      "search_name",
	btnSearchUniversal: "search",
}

// Command handles the /search family. With an argument the search runs
// immediately; without one the admin is parked on the matching query step.
func (h *Search) Command(ctx context.Context, cmd Command) error {
	if !h.isAdmin(cmd.Sender.ID) {
		return h.transport.SendMessage(ctx, Message{ChatID: cmd.ChatID, Text: msgPermissionDenied})
	}

	mode, ok := searchModes[cmd.Name]
	if !ok {
		return nil
	}

	if query := strings.TrimSpace(cmd.Args); query != "" {
		return h.execute(ctx, cmd.ChatID, mode, query)
	}
	return h.park(ctx, cmd.Sender.ID, cmd.ChatID, mode)
}

// MenuButton reacts to an admin pressing one of the search menu buttons.
// Returns false when the text is not a known button.
func (h *Search) MenuButton(ctx context.Context, ev Text) (bool, error) {
	name, ok := menuButtons[ev.Body]
	if !ok {
		return false, nil
	}
	if !h.isAdmin(ev.Sender.ID) {
		return true, h.transport.SendMessage(ctx, Message{ChatID: ev.ChatID, Text: msgPermissionDenied})
	}
	return true, h.park(ctx, ev.Sender.ID, ev.ChatID, searchModes[name])
}

func (h *Search) park(ctx context.Context, adminID, chatID int64, mode searchMode) error {
	if err := h.states.Set(ctx, adminID, &conversation.State{Step: mode.step}); err != nil {
		return fmt.Errorf("park search conversation: %w", err)
	}
	return h.transport.SendMessage(ctx, Message{ChatID: chatID, Text: "🔍 " + mode.prompt})
}

// ResumeQuery completes a parked search conversation with the typed query.
func (h *Search) ResumeQuery(ctx context.Context, ev Text, state *conversation.State) error {
	mode, ok := modeForStep(state.Step)
	if !ok {
		return nil
	}

	if err := h.states.Clear(ctx, ev.Sender.ID); err != nil {
		h.logger.Error("clear search conversation", "admin_id", ev.Sender.ID, "error", err)
	}
	if !h.isAdmin(ev.Sender.ID) {
		return h.transport.SendMessage(ctx, Message{ChatID: ev.ChatID, Text: msgPermissionDenied})
	}
	return h.execute(ctx, ev.ChatID, mode, ev.Body)
}

func modeForStep(step conversation.Step) (searchMode, bool) {
	for _, mode := range searchModes {
		if mode.step == step {
			return mode, true
		}
	}
	return searchMode{}, false
}

func (h *Search) execute(ctx context.Context, chatID int64, mode searchMode, query string) error {
	ok, reason, sanitized := security.SanitizeSearchQuery(query)
	if !ok {
		return h.transport.SendMessage(ctx, Message{ChatID: chatID, Text: "❌ " + reason})
	}

	results, err := mode.run(h, ctx, sanitized)
	if err != nil {
		h.logger.Error("run search", "error", err)
		return h.transport.SendMessage(ctx, Message{ChatID: chatID, Text: msgGenericFailure})
	}

	if len(results) == 0 {
		return h.transport.SendMessage(ctx, Message{ChatID: chatID, Text: "🔍 Ничего не найдено."})
	}

	header := fmt.Sprintf("📋 <b>Найдено пользователей: %d</b>", len(results))
	if err := h.transport.SendMessage(ctx, Message{ChatID: chatID, Text: header}); err != nil {
		return err
	}

	for _, app := range results {
		if err := h.transport.SendMessage(ctx, Message{ChatID: chatID, Text: formatApplication(app)}); err != nil {
			h.logger.Error("send search result", "application_id", app.ID, "error", err)
			continue
		}
		h.deliverDocument(ctx, chatID, app)
	}
	return nil
}

// deliverDocument re-sends the stored artifact alongside the record. The
// storage keeps only the file reference, not its kind, so photo delivery is
// tried first with document delivery as the fallback.
func (h *Search) deliverDocument(ctx context.Context, chatID int64, app *models.Application) {
	if app.DocumentRef == "" {
		return
	}
	if err := h.transport.SendPhoto(ctx, chatID, app.DocumentRef, docCaption); err == nil {
		return
	}
	if err := h.transport.SendDocument(ctx, chatID, app.DocumentRef, docCaption); err != nil {
		h.logger.Error("deliver stored document", "application_id", app.ID, "error", err)
	}
}
