package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"village-gate/internal/application/service"
	"village-gate/pkg/platform/sentinel"
)

// rosterBatchSize keeps the roster message under the platform message limit.
const rosterBatchSize = 10

// Admin implements the administrative console: the search menu, aggregate
// statistics, the full roster and member removal.
type Admin struct {
	transport Transport
	apps      *service.Service
	isAdmin   func(int64) bool
	groupID   int64
	logger    *slog.Logger
}

func NewAdmin(transport Transport, apps *service.Service, isAdmin func(int64) bool, groupID int64, logger *slog.Logger) *Admin {
	return &Admin{
		transport: transport,
		apps:      apps,
		isAdmin:   isAdmin,
		groupID:   groupID,
		logger:    logger,
	}
}

func (h *Admin) denyUnlessAdmin(ctx context.Context, cmd Command) (bool, error) {
	if h.isAdmin(cmd.Sender.ID) {
		return false, nil
	}
	return true, h.transport.SendMessage(ctx, Message{ChatID: cmd.ChatID, Text: msgPermissionDenied})
}

// Menu shows the search mode keyboard.
func (h *Admin) Menu(ctx context.Context, cmd Command) error {
	if denied, err := h.denyUnlessAdmin(ctx, cmd); denied {
		return err
	}
	return h.transport.SendMessage(ctx, Message{
		ChatID: cmd.ChatID,
		Text:   "🔧 <b>Панель администратора</b>\n\nВыберите тип поиска:",
		Keyboard: MenuKeyboard{Rows: [][]string{
			{btnSearchPlot, btnSearchPhone},
			{btnSearchName, btnSearchUniversal},
		}},
	})
}

// Stats reports application counts broken down by status.
func (h *Admin) Stats(ctx context.Context, cmd Command) error {
	if denied, err := h.denyUnlessAdmin(ctx, cmd); denied {
		return err
	}

	stats, err := h.apps.Statistics(ctx)
	if err != nil {
		h.logger.Error("collect statistics", "error", err)
		return h.transport.SendMessage(ctx, Message{ChatID: cmd.ChatID, Text: msgGenericFailure})
	}

	text := fmt.Sprintf(
		"📊 <b>Статистика заявок</b>\n\n"+
			"Всего: %d\n"+
			"⏳ На рассмотрении: %d\n"+
			"✅ Одобрено: %d\n"+
			"❌ Отклонено: %d",
		stats.Total, stats.Pending, stats.Approved, stats.Rejected,
	)
	return h.transport.SendMessage(ctx, Message{ChatID: cmd.ChatID, Text: text})
}

// ListUsers sends the full roster in batches so no single message exceeds
// the platform limit.
func (h *Admin) ListUsers(ctx context.Context, cmd Command) error {
	if denied, err := h.denyUnlessAdmin(ctx, cmd); denied {
		return err
	}

	apps, err := h.apps.ListAll(ctx)
	if err != nil {
		h.logger.Error("list applications", "error", err)
		return h.transport.SendMessage(ctx, Message{ChatID: cmd.ChatID, Text: msgGenericFailure})
	}
	if len(apps) == 0 {
		return h.transport.SendMessage(ctx, Message{ChatID: cmd.ChatID, Text: "📋 Список пользователей пуст."})
	}

	header := fmt.Sprintf("📋 <b>Всего пользователей: %d</b>", len(apps))
	if err := h.transport.SendMessage(ctx, Message{ChatID: cmd.ChatID, Text: header}); err != nil {
		return err
	}

	for start := 0; start < len(apps); start += rosterBatchSize {
		end := min(start+rosterBatchSize, len(apps))
		var b strings.Builder
		for _, app := range apps[start:end] {
			b.WriteString(formatRosterLine(app))
			b.WriteString("\n")
		}
		if err := h.transport.SendMessage(ctx, Message{ChatID: cmd.ChatID, Text: b.String()}); err != nil {
			return fmt.Errorf("send roster batch: %w", err)
		}
	}
	return nil
}

// RemoveUser kicks a member out of the group without banning: ban followed
// by an immediate unban, so the person can be re-invited later.
func (h *Admin) RemoveUser(ctx context.Context, cmd Command) error {
	if denied, err := h.denyUnlessAdmin(ctx, cmd); denied {
		return err
	}

	arg := strings.TrimSpace(cmd.Args)
	if arg == "" {
		return h.transport.SendMessage(ctx, Message{
			ChatID: cmd.ChatID,
			Text:   "Использование: /remove_user &lt;Telegram ID&gt;",
		})
	}
	memberID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return h.transport.SendMessage(ctx, Message{ChatID: cmd.ChatID, Text: "❌ Telegram ID должен быть числом."})
	}

	app, err := h.apps.Get(ctx, memberID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return h.transport.SendMessage(ctx, Message{ChatID: cmd.ChatID, Text: "❌ Пользователь с таким ID не найден."})
		}
		h.logger.Error("look up member", "member_id", memberID, "error", err)
		return h.transport.SendMessage(ctx, Message{ChatID: cmd.ChatID, Text: msgGenericFailure})
	}

	if err := h.kick(ctx, cmd, memberID); err != nil {
		h.logger.Error("remove member", "member_id", memberID, "error", err)
		return h.transport.SendMessage(ctx, Message{ChatID: cmd.ChatID, Text: "❌ Не удалось удалить пользователя из группы."})
	}

	h.logger.Info("member removed", "member_id", memberID, "admin_id", cmd.Sender.ID)
	return h.transport.SendMessage(ctx, Message{
		ChatID: cmd.ChatID,
		Text:   fmt.Sprintf("✅ Пользователь %s (ID: %d) удален из группы.", app.FullName, memberID),
	})
}

func (h *Admin) kick(ctx context.Context, cmd Command, memberID int64) error {
	groupID := h.groupID

	err := h.transport.BanMember(ctx, groupID, memberID)
	var relocated *RelocatedError
	if errors.As(err, &relocated) {
		h.logger.Warn("group chat relocated", "old_chat_id", groupID, "new_chat_id", relocated.NewChatID)
		notice := Message{ChatID: cmd.ChatID, Text: fmt.Sprintf(msgGroupRelocated, relocated.NewChatID)}
		if err := h.transport.SendMessage(ctx, notice); err != nil {
			h.logger.Error("report chat relocation", "admin_id", cmd.Sender.ID, "error", err)
		}
		groupID = relocated.NewChatID
		err = h.transport.BanMember(ctx, groupID, memberID)
	}
	if err != nil {
		return fmt.Errorf("ban member: %w", err)
	}

	if err := h.transport.UnbanMember(ctx, groupID, memberID); err != nil {
		return fmt.Errorf("unban member: %w", err)
	}
	return nil
}
