package menu

import (
	"fmt"
	"log"
	"strings"

	"mailcast/context"
	"mailcast/messaging"
	"mailcast/objects"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// ShowAdminPanel sends the top-level admin screen
func ShowAdminPanel(ctx *context.Context, user *objects.User) {
	log.Printf("[MENU] Showing admin panel to user %d", user.UserId)

	count, err := ctx.Repo.GetUserCount()
	if err != nil {
		log.Printf("[MENU] ERROR counting users for admin panel: %v", err)
	}

	text := fmt.Sprintf("<b>Панель администратора</b>\n\nПользователей в базе: %d", count)
	ctx.Send(messaging.NewHTMLKeyboardMessage(user.UserId, text, adminPanelKeyboard()))
}

func adminPanelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📣 Новая рассылка", "admin:compose"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Шаблоны", "admin:templates"),
			tgbotapi.NewInlineKeyboardButtonData("🕘 История", "admin:history"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", "admin:stats"),
			tgbotapi.NewInlineKeyboardButtonData("👥 Пользователи", "admin:users"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Отчёт Excel", "admin:report"),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Обновить", "admin:refresh"),
		),
	)
}

const userScreenSize = 10

// ShowUsers sends the user management screen: totals plus the latest signups
func ShowUsers(ctx *context.Context, user *objects.User) {
	log.Printf("[MENU] Showing user list to admin %d", user.UserId)

	users, err := ctx.Repo.GetAllUsers()
	if err != nil {
		log.Printf("[MENU] ERROR loading users: %v", err)
		sendComposeError(ctx, user)
		return
	}

	latest := users
	if len(latest) > userScreenSize {
		latest = latest[:userScreenSize]
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Обновить", "admin:users"),
		),
	)
	ctx.Send(messaging.NewHTMLKeyboardMessage(user.UserId, usersText(users, latest), keyboard))
}

func usersText(all, latest []*objects.User) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>Пользователи</b>\n\nВсего: %d\n", len(all)))
	if len(latest) > 0 {
		sb.WriteString("\nПоследние регистрации:")
	}
	for i, u := range latest {
		sb.WriteString(fmt.Sprintf("\n%d. %s — %s",
			i+1, messaging.Escape(u.DisplayName()), u.JoinedAt.Format("02.01.2006")))
	}
	return sb.String()
}

// HandleAdminCallback routes the admin panel buttons
func HandleAdminCallback(ctx *context.Context, user *objects.User, callback *tgbotapi.CallbackQuery) {
	ctx.AnswerCallbackQuery(tgbotapi.NewCallback(callback.ID, ""))

	switch callback.Data {
	case "admin:compose":
		StartCompose(ctx, user)
	case "admin:templates":
		ShowTemplates(ctx, user)
	case "admin:history":
		ShowHistory(ctx, user)
	case "admin:stats":
		ShowStats(ctx, user)
	case "admin:users":
		ShowUsers(ctx, user)
	case "admin:report":
		GenerateReport(ctx, user)
	case "admin:refresh":
		ShowAdminPanel(ctx, user)
	default:
		log.Printf("[MENU] Unknown admin callback '%s'", callback.Data)
	}
}
