package menu

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"mailcast/context"
	"mailcast/mailing"
	"mailcast/messaging"
	"mailcast/objects"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

const templatesPerPage = 5

// ShowTemplates lists saved templates as buttons, first page
func ShowTemplates(ctx *context.Context, user *objects.User) {
	showTemplatesPage(ctx, user, 0)
}

func showTemplatesPage(ctx *context.Context, user *objects.User, page int) {
	log.Printf("[MENU] Showing templates page %d to admin %d", page, user.UserId)

	templates, err := ctx.Repo.ListTemplates()
	if err != nil {
		log.Printf("[MENU] ERROR listing templates: %v", err)
		sendComposeError(ctx, user)
		return
	}

	if len(templates) == 0 {
		ctx.Send(messaging.NewHTMLMessage(user.UserId,
			"Шаблонов пока нет. Создайте рассылку и нажмите «Сохранить как шаблон»."))
		return
	}

	totalPages := (len(templates) + templatesPerPage - 1) / templatesPerPage
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}

	text := fmt.Sprintf("<b>Шаблоны</b> (%d)\n\nВыберите шаблон:", len(templates))
	if totalPages > 1 {
		text = fmt.Sprintf("<b>Шаблоны</b> (%d)\n\nСтраница %d из %d. Выберите шаблон:",
			len(templates), page+1, totalPages)
	}
	ctx.Send(messaging.NewHTMLKeyboardMessage(user.UserId, text,
		templatesKeyboard(templates, page)))
}

// templatesKeyboard renders one page of template buttons plus prev/next
// navigation. Inline keyboards have a hard size limit, so the list is
// always windowed.
func templatesKeyboard(templates []*objects.Broadcast, page int) tgbotapi.InlineKeyboardMarkup {
	start := page * templatesPerPage
	end := start + templatesPerPage
	if start > len(templates) {
		start = len(templates)
	}
	if end > len(templates) {
		end = len(templates)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, template := range templates[start:end] {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(template.Title,
				fmt.Sprintf("tpl:view:%d", template.ID)),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️",
			fmt.Sprintf("tpl:page:%d", page-1)))
	}
	if end < len(templates) {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("➡️",
			fmt.Sprintf("tpl:page:%d", page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// HandleTemplateCallback routes tpl:view / tpl:send / tpl:delete / tpl:page / tpl:back
func HandleTemplateCallback(ctx *context.Context, user *objects.User, callback *tgbotapi.CallbackQuery) {
	ctx.AnswerCallbackQuery(tgbotapi.NewCallback(callback.ID, ""))

	action, id, err := parseTemplateCallback(callback.Data)
	if err != nil {
		log.Printf("[MENU] Malformed template callback '%s': %v", callback.Data, err)
		return
	}

	if action == "back" {
		ShowTemplates(ctx, user)
		return
	}
	if action == "page" {
		// The id slot carries the page number for navigation buttons
		showTemplatesPage(ctx, user, int(id))
		return
	}

	template, err := ctx.Repo.GetBroadcast(id)
	if err != nil {
		log.Printf("[MENU] ERROR loading template %d: %v", id, err)
		sendComposeError(ctx, user)
		return
	}
	if template == nil || !template.IsTemplate {
		log.Printf("[MENU] Template %d not found or already removed", id)
		ctx.Send(messaging.NewHTMLMessage(user.UserId, "Этот шаблон уже удалён."))
		return
	}

	switch action {
	case "view":
		showTemplatePreview(ctx, user, template)
	case "send":
		showTemplateAudienceKeyboard(ctx, user, template)
	case "delete":
		deleteTemplate(ctx, user, template)
	default:
		log.Printf("[MENU] Unknown template action '%s'", action)
	}
}

// parseTemplateCallback splits "tpl:<action>:<id>" ("tpl:back" has no id)
func parseTemplateCallback(data string) (string, int64, error) {
	parts := strings.Split(data, ":")
	if len(parts) == 2 && parts[1] == "back" {
		return "back", 0, nil
	}
	if len(parts) != 3 {
		return "", 0, fmt.Errorf("expected tpl:<action>:<id>, got %q", data)
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("bad template id in %q: %w", data, err)
	}
	return parts[1], id, nil
}

func showTemplatePreview(ctx *context.Context, user *objects.User, template *objects.Broadcast) {
	text := fmt.Sprintf("<b>Шаблон</b>\n\n%s\n\nВложение: %s",
		mailing.RenderText(template), kindName(template.Kind))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📣 Отправить",
				fmt.Sprintf("tpl:send:%d", template.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить",
				fmt.Sprintf("tpl:delete:%d", template.ID)),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "tpl:back"),
		),
	)
	ctx.Send(messaging.NewHTMLKeyboardMessage(user.UserId, text, keyboard))
}

func showTemplateAudienceKeyboard(ctx *context.Context, user *objects.User, template *objects.Broadcast) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, tag := range objects.AudienceTags {
		count, err := ctx.Repo.CountAudience(tag)
		if err != nil {
			log.Printf("[MENU] ERROR counting audience '%s': %v", tag, err)
		}
		label := fmt.Sprintf("%s (%d)", objects.AudienceTagName(tag), count)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label,
				fmt.Sprintf("tplaud:%d:%s", template.ID, tag)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад",
			fmt.Sprintf("tpl:view:%d", template.ID)),
	))

	ctx.Send(messaging.NewHTMLKeyboardMessage(user.UserId,
		fmt.Sprintf("Кому отправить «%s»?", messaging.Escape(template.Title)),
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}))
}

// deleteTemplate clears the template flag, keeping the row and its history
func deleteTemplate(ctx *context.Context, user *objects.User, template *objects.Broadcast) {
	if err := ctx.Repo.SetTemplateFlag(template.ID, false); err != nil {
		log.Printf("[MENU] ERROR deleting template %d: %v", template.ID, err)
		sendComposeError(ctx, user)
		return
	}

	log.Printf("[MENU] Admin %d deleted template %d", user.UserId, template.ID)
	ctx.Send(messaging.NewHTMLMessage(user.UserId,
		fmt.Sprintf("Шаблон «%s» удалён.", messaging.Escape(template.Title))))
	ShowTemplates(ctx, user)
}

// HandleTemplateAudienceCallback clones the template and dispatches the clone
func HandleTemplateAudienceCallback(ctx *context.Context, user *objects.User, callback *tgbotapi.CallbackQuery) {
	ctx.AnswerCallbackQuery(tgbotapi.NewCallback(callback.ID, ""))

	id, tag, err := parseTemplateAudienceCallback(callback.Data)
	if err != nil {
		log.Printf("[MENU] Malformed template audience callback '%s': %v", callback.Data, err)
		return
	}

	template, err := ctx.Repo.GetBroadcast(id)
	if err != nil || template == nil || !template.IsTemplate {
		log.Printf("[MENU] Template %d unavailable for sending", id)
		ctx.Send(messaging.NewHTMLMessage(user.UserId, "Этот шаблон уже удалён."))
		return
	}

	// The clone gets its own row and delivery records, the template stays intact
	clone := template.CloneForSend(tag)
	if err := ctx.Repo.CreateBroadcast(clone); err != nil {
		log.Printf("[MENU] ERROR persisting template clone: %v", err)
		sendComposeError(ctx, user)
		return
	}

	ctx.Send(messaging.NewHTMLMessage(user.UserId,
		fmt.Sprintf("Рассылка «%s» запущена по шаблону. Я сообщу, когда она завершится.",
			messaging.Escape(clone.Title))))

	go runDispatch(ctx, user.UserId, clone)
}

// parseTemplateAudienceCallback splits "tplaud:<id>:<tag>"
func parseTemplateAudienceCallback(data string) (int64, string, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 {
		return 0, "", fmt.Errorf("expected tplaud:<id>:<tag>, got %q", data)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("bad template id in %q: %w", data, err)
	}
	if !objects.IsValidAudienceTag(parts[2]) {
		return 0, "", fmt.Errorf("unrecognized audience tag in %q", data)
	}
	return id, parts[2], nil
}
