package bot

import (
	"fmt"
	"strings"

	"village-gate/internal/application/models"
)

// User-facing texts. The transport renders them with HTML parse mode.

const (
	msgWelcome = "👋 Добро пожаловать!\n\n" +
		"Для регистрации в закрытой группе соседей необходимо пройти верификацию.\n\n" +
		"Пожалуйста, введите ваше ФИО (полностью):"
	msgAlreadyApproved = "✅ Вы уже зарегистрированы и одобрены!\n" +
		"Если у вас есть вопросы, обратитесь к администратору."
	msgPendingReview = "⏳ Ваша заявка находится на рассмотрении.\n" +
		"Ожидайте решения администратора."
	msgPreviouslyRejected = "❌ Ваша предыдущая заявка была отклонена.\n" +
		"Вы можете начать регистрацию заново, отправив /start"

	msgAskPhone      = "Теперь отправьте ваш номер телефона:"
	msgAskPlot       = "Теперь введите номер вашего участка:"
	msgAskDocument   = "Теперь отправьте фото или документ первого листа выписки из ЕГРН (или другого документа, подтверждающего право собственности):"
	msgForeignPhone  = "❌ Пожалуйста, отправьте свой собственный номер телефона."
	msgNotAttachment = "❌ Пожалуйста, отправьте фото или документ (PDF, изображение).\n" +
		"Текстовые сообщения не принимаются на этом этапе."
	msgStateCorrupted = "❌ Произошла ошибка. Пожалуйста, начните регистрацию заново командой /start"
	msgSubmitted      = "✅ Спасибо! Ваша заявка отправлена на рассмотрение администратору.\n\n" +
		"Ожидайте решения. Вы получите уведомление, когда администратор рассмотрит вашу заявку."
	msgSubmitFailed = "❌ Произошла ошибка при сохранении данных. Пожалуйста, попробуйте позже или обратитесь к администратору."

	msgPermissionDenied = "❌ У вас нет прав для выполнения этой команды."
	msgDecisionDenied   = "❌ У вас нет прав для выполнения этого действия"
	msgGenericFailure   = "❌ Произошла ошибка"

	msgApprovedWithInvite = "✅ <b>Ваша заявка одобрена!</b>\n\n" +
		"Доступ разрешен. Вступайте в чат соседей по ссылке:\n%s\n\n" +
		"Ссылка одноразовая и действительна только для вас."
	msgApprovedManual = "✅ <b>Ваша заявка одобрена!</b>\n\n" +
		"Обратитесь к администратору для получения доступа в группу."
	msgRejectedNotice = "❌ <b>Ваша заявка отклонена</b>\n\n" +
		"Проверьте данные и попробуйте зарегистрироваться заново командой /start.\n" +
		"Если вы считаете, что это ошибка, обратитесь к администратору."
	markerApproved = "\n\n✅ <b>ОДОБРЕНО</b>"
	markerRejected = "\n\n❌ <b>ОТКЛОНЕНО</b>"
	ackApproved    = "✅ Пользователь одобрен"
	ackRejected    = "❌ Заявка отклонена"

	msgGroupRelocated = "⚠️ Группа была преобразована. Обновите GROUP_ID в конфигурации на новый ID: %d"

	docCaption = "Документ пользователя"
)

// Admin menu button labels. Text messages matching a label switch the admin
// into the corresponding search mode.
const (
	btnSearchPlot      = "🔍 Поиск по участку"
	btnSearchPhone     = "📱 Поиск по телефону"
	btnSearchName      = "👤 Поиск по ФИО"
	btnSearchUniversal = "🔎 Универсальный поиск"
)

var statusGlyphs = map[models.Status]string{
	models.StatusPending:  "⏳",
	models.StatusApproved: "✅",
	models.StatusRejected: "❌",
}

var statusTexts = map[models.Status]string{
	models.StatusPending:  "На рассмотрении",
	models.StatusApproved: "Одобрен",
	models.StatusRejected: "Отклонен",
}

func statusGlyph(status models.Status) string {
	if glyph, ok := statusGlyphs[status]; ok {
		return glyph
	}
	return "❓"
}

func statusText(status models.Status) string {
	if text, ok := statusTexts[status]; ok {
		return text
	}
	return string(status)
}

func usernameOrPlaceholder(username string) string {
	if username == "" {
		return "не указан"
	}
	return username
}

// formatApplication renders one stored application as an admin-facing record.
func formatApplication(app *models.Application) string {
	return fmt.Sprintf(
		"%s <b>Статус:</b> %s\n"+
			"<b>ФИО:</b> %s\n"+
			"<b>Телефон:</b> %s\n"+
			"<b>Участок:</b> %s\n"+
			"<b>Telegram ID:</b> %d\n"+
			"<b>Username:</b> @%s\n"+
			"<b>ID заявки:</b> %d\n"+
			"<b>Дата регистрации:</b> %s",
		statusGlyph(app.Status), statusText(app.Status),
		app.FullName, app.Phone, app.PlotNumber,
		app.ApplicantID, usernameOrPlaceholder(app.Username),
		app.ID, app.CreatedAt.Format("2006-01-02 15:04:05"),
	)
}

// formatSubmissionNotice renders the admin notification for a new application.
func formatSubmissionNotice(app *models.Application) string {
	return fmt.Sprintf(
		"🔔 <b>Новая заявка на регистрацию</b>\n\n"+
			"<b>ФИО:</b> %s\n"+
			"<b>Телефон:</b> %s\n"+
			"<b>Участок:</b> %s\n"+
			"<b>Telegram ID:</b> %d\n"+
			"<b>Username:</b> @%s\n"+
			"<b>ID заявки:</b> %d",
		app.FullName, app.Phone, app.PlotNumber,
		app.ApplicantID, usernameOrPlaceholder(app.Username), app.ID,
	)
}

// formatRosterLine renders one compact roster entry for the list command.
func formatRosterLine(app *models.Application) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s</b>\n", statusGlyph(app.Status), app.FullName)
	fmt.Fprintf(&b, "   ID: %d | Участок: %s\n", app.ApplicantID, app.PlotNumber)
	fmt.Fprintf(&b, "   Статус: %s\n", string(app.Status))
	return b.String()
}
