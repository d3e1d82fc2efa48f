package menu

import (
	"fmt"
	"log"
	"strings"

	"mailcast/bugsink"
	"mailcast/context"
	"mailcast/mailing"
	"mailcast/messaging"
	"mailcast/objects"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

const maxTitleLength = 200

// StartCompose opens a fresh draft and asks for the title
func StartCompose(ctx *context.Context, user *objects.User) {
	log.Printf("[MENU] Admin %d starts composing a broadcast", user.UserId)

	draft := objects.NewDraft(user.UserId)
	if err := ctx.Repo.SaveDraft(draft); err != nil {
		log.Printf("[MENU] ERROR saving fresh draft for admin %d: %v", user.UserId, err)
		sendComposeError(ctx, user)
		return
	}

	setMenu(ctx, user, objects.Menu_CollectingTitle)
	ctx.Send(messaging.NewHTMLKeyboardMessage(user.UserId,
		"<b>Новая рассылка</b>\n\nВведите заголовок:", cancelKeyboard()))
}

// HandleComposeMessage advances the compose flow with the admin's input
func HandleComposeMessage(ctx *context.Context, user *objects.User, message *tgbotapi.Message) {
	draft, err := ctx.Repo.FindDraft(user.UserId)
	if err != nil {
		log.Printf("[MENU] ERROR loading draft for admin %d: %v", user.UserId, err)
		sendComposeError(ctx, user)
		return
	}
	if draft == nil {
		// The draft expired mid-flow, start over
		log.Printf("[MENU] Draft for admin %d is gone, resetting flow", user.UserId)
		setMenu(ctx, user, objects.Menu_Idle)
		ctx.Send(messaging.NewHTMLMessage(user.UserId,
			"Черновик устарел. Начните рассылку заново через /admin."))
		return
	}

	switch user.MenuId {
	case objects.Menu_CollectingTitle:
		collectTitle(ctx, user, draft, message)
	case objects.Menu_CollectingBody:
		collectBody(ctx, user, draft, message)
	case objects.Menu_CollectingMedia:
		collectMedia(ctx, user, draft, message)
	case objects.Menu_CollectingAudience, objects.Menu_Confirming:
		ctx.Send(messaging.NewHTMLMessage(user.UserId, "Используйте кнопки под сообщением."))
	}
}

func collectTitle(ctx *context.Context, user *objects.User, draft *objects.Draft, message *tgbotapi.Message) {
	title := strings.TrimSpace(message.Text)
	if title == "" {
		ctx.Send(messaging.NewHTMLMessage(user.UserId, "Заголовок не может быть пустым. Введите заголовок:"))
		return
	}
	if len([]rune(title)) > maxTitleLength {
		ctx.Send(messaging.NewHTMLMessage(user.UserId,
			fmt.Sprintf("Заголовок слишком длинный (максимум %d символов). Введите короче:", maxTitleLength)))
		return
	}

	draft.Title = title
	if err := ctx.Repo.SaveDraft(draft); err != nil {
		log.Printf("[MENU] ERROR saving draft title for admin %d: %v", user.UserId, err)
		sendComposeError(ctx, user)
		return
	}

	setMenu(ctx, user, objects.Menu_CollectingBody)
	ctx.Send(messaging.NewHTMLKeyboardMessage(user.UserId, "Введите текст рассылки:", cancelKeyboard()))
}

func collectBody(ctx *context.Context, user *objects.User, draft *objects.Draft, message *tgbotapi.Message) {
	body := strings.TrimSpace(message.Text)
	if body == "" {
		ctx.Send(messaging.NewHTMLMessage(user.UserId, "Текст не может быть пустым. Введите текст рассылки:"))
		return
	}

	draft.Body = body
	if err := ctx.Repo.SaveDraft(draft); err != nil {
		log.Printf("[MENU] ERROR saving draft body for admin %d: %v", user.UserId, err)
		sendComposeError(ctx, user)
		return
	}

	setMenu(ctx, user, objects.Menu_CollectingMedia)
	ctx.Send(messaging.NewHTMLKeyboardMessage(user.UserId,
		"Пришлите вложение (фото, видео, документ, аудио или голосовое) или нажмите «Пропустить»:",
		mediaKeyboard()))
}

func collectMedia(ctx *context.Context, user *objects.User, draft *objects.Draft, message *tgbotapi.Message) {
	kind, fileID := extractMedia(message)
	if kind == "" {
		ctx.Send(messaging.NewHTMLMessage(user.UserId,
			"Это не похоже на вложение. Пришлите фото, видео, документ, аудио или голосовое, либо нажмите «Пропустить»."))
		return
	}

	log.Printf("[MENU] Admin %d attached %s media to draft", user.UserId, kind)

	draft.Kind = kind
	draft.MediaFileID = fileID
	if err := ctx.Repo.SaveDraft(draft); err != nil {
		log.Printf("[MENU] ERROR saving draft media for admin %d: %v", user.UserId, err)
		sendComposeError(ctx, user)
		return
	}

	showAudienceKeyboard(ctx, user)
}

// extractMedia picks the attachment kind and file_id out of a message.
// For photos Telegram sends several sizes, the last one is the largest.
func extractMedia(message *tgbotapi.Message) (string, string) {
	switch {
	case message.Photo != nil && len(*message.Photo) > 0:
		sizes := *message.Photo
		return objects.KindPhoto, sizes[len(sizes)-1].FileID
	case message.Video != nil:
		return objects.KindVideo, message.Video.FileID
	case message.Document != nil:
		return objects.KindDocument, message.Document.FileID
	case message.Audio != nil:
		return objects.KindAudio, message.Audio.FileID
	case message.Voice != nil:
		return objects.KindVoice, message.Voice.FileID
	}
	return "", ""
}

// showAudienceKeyboard offers the audience tags with live recipient counts
func showAudienceKeyboard(ctx *context.Context, user *objects.User) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, tag := range objects.AudienceTags {
		count, err := ctx.Repo.CountAudience(tag)
		if err != nil {
			log.Printf("[MENU] ERROR counting audience '%s': %v", tag, err)
		}
		label := fmt.Sprintf("%s (%d)", objects.AudienceTagName(tag), count)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "aud:"+tag),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Отмена", "compose:cancel"),
	))

	setMenu(ctx, user, objects.Menu_CollectingAudience)
	ctx.Send(messaging.NewHTMLKeyboardMessage(user.UserId,
		"Кому отправить рассылку?", tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}))
}

// HandleComposeCallback handles the skip and cancel buttons of the flow
func HandleComposeCallback(ctx *context.Context, user *objects.User, callback *tgbotapi.CallbackQuery) {
	ctx.AnswerCallbackQuery(tgbotapi.NewCallback(callback.ID, ""))

	switch callback.Data {
	case "compose:skip_media":
		if user.MenuId != objects.Menu_CollectingMedia {
			return
		}
		showAudienceKeyboard(ctx, user)
	case "compose:cancel":
		CancelCompose(ctx, user)
	}
}

// HandleAudienceCallback stores the chosen audience and shows the confirmation
func HandleAudienceCallback(ctx *context.Context, user *objects.User, callback *tgbotapi.CallbackQuery) {
	ctx.AnswerCallbackQuery(tgbotapi.NewCallback(callback.ID, ""))

	if user.MenuId != objects.Menu_CollectingAudience {
		log.Printf("[MENU] Admin %d pressed an audience button outside the flow", user.UserId)
		return
	}

	tag := strings.TrimPrefix(callback.Data, "aud:")
	if !objects.IsValidAudienceTag(tag) {
		log.Printf("[MENU] Admin %d picked unrecognized audience '%s'", user.UserId, tag)
		return
	}

	draft, err := ctx.Repo.FindDraft(user.UserId)
	if err != nil || draft == nil {
		log.Printf("[MENU] Draft missing for admin %d at audience step", user.UserId)
		setMenu(ctx, user, objects.Menu_Idle)
		sendComposeError(ctx, user)
		return
	}

	draft.AudienceTag = tag
	if err := ctx.Repo.SaveDraft(draft); err != nil {
		log.Printf("[MENU] ERROR saving draft audience for admin %d: %v", user.UserId, err)
		sendComposeError(ctx, user)
		return
	}

	showConfirmation(ctx, user, draft)
}

func showConfirmation(ctx *context.Context, user *objects.User, draft *objects.Draft) {
	count, err := ctx.Repo.CountAudience(draft.AudienceTag)
	if err != nil {
		log.Printf("[MENU] ERROR counting audience for confirmation: %v", err)
	}

	preview := mailing.RenderText(draft.ToBroadcast(false))
	text := fmt.Sprintf(
		"<b>Проверьте рассылку</b>\n\n%s\n\n"+
			"Вложение: %s\n"+
			"Аудитория: %s (%d получателей)",
		preview, kindName(draft.Kind), objects.AudienceTagName(draft.AudienceTag), count)

	setMenu(ctx, user, objects.Menu_Confirming)
	ctx.Send(messaging.NewHTMLKeyboardMessage(user.UserId, text, confirmKeyboard()))
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Отправить", "confirm:send"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Изменить текст", "confirm:edit_body"),
			tgbotapi.NewInlineKeyboardButtonData("📎 Изменить вложение", "confirm:edit_media"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💾 Сохранить как шаблон", "confirm:template"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "confirm:back"),
			tgbotapi.NewInlineKeyboardButtonData("Отмена", "confirm:cancel"),
		),
	)
}

// HandleConfirmCallback acts on the confirmation screen buttons
func HandleConfirmCallback(ctx *context.Context, user *objects.User, callback *tgbotapi.CallbackQuery) {
	ctx.AnswerCallbackQuery(tgbotapi.NewCallback(callback.ID, ""))

	if user.MenuId != objects.Menu_Confirming {
		return
	}

	switch callback.Data {
	case "confirm:send":
		confirmSend(ctx, user)
	case "confirm:template":
		confirmTemplate(ctx, user)
	case "confirm:edit_body":
		setMenu(ctx, user, objects.Menu_CollectingBody)
		ctx.Send(messaging.NewHTMLKeyboardMessage(user.UserId,
			"Введите новый текст рассылки:", cancelKeyboard()))
	case "confirm:edit_media":
		setMenu(ctx, user, objects.Menu_CollectingMedia)
		ctx.Send(messaging.NewHTMLKeyboardMessage(user.UserId,
			"Пришлите новое вложение или нажмите «Пропустить»:", mediaKeyboard()))
	case "confirm:back":
		showAudienceKeyboard(ctx, user)
	case "confirm:cancel":
		CancelCompose(ctx, user)
	}
}

func confirmSend(ctx *context.Context, user *objects.User) {
	draft, err := ctx.Repo.FindDraft(user.UserId)
	if err != nil || draft == nil {
		log.Printf("[MENU] Draft missing for admin %d at send step", user.UserId)
		setMenu(ctx, user, objects.Menu_Idle)
		sendComposeError(ctx, user)
		return
	}

	broadcast := draft.ToBroadcast(false)
	if err := ctx.Repo.CreateBroadcast(broadcast); err != nil {
		log.Printf("[MENU] ERROR persisting broadcast for admin %d: %v", user.UserId, err)
		sendComposeError(ctx, user)
		return
	}

	if err := ctx.Repo.DeleteDraft(user.UserId); err != nil {
		log.Printf("[MENU] ERROR deleting draft for admin %d: %v", user.UserId, err)
	}
	setMenu(ctx, user, objects.Menu_Idle)

	ctx.Send(messaging.NewHTMLMessage(user.UserId,
		fmt.Sprintf("Рассылка «%s» запущена. Я сообщу, когда она завершится.",
			messaging.Escape(broadcast.Title))))

	go runDispatch(ctx, user.UserId, broadcast)
}

func confirmTemplate(ctx *context.Context, user *objects.User) {
	draft, err := ctx.Repo.FindDraft(user.UserId)
	if err != nil || draft == nil {
		log.Printf("[MENU] Draft missing for admin %d at template step", user.UserId)
		setMenu(ctx, user, objects.Menu_Idle)
		sendComposeError(ctx, user)
		return
	}

	template := draft.ToBroadcast(true)
	if err := ctx.Repo.CreateBroadcast(template); err != nil {
		log.Printf("[MENU] ERROR persisting template for admin %d: %v", user.UserId, err)
		sendComposeError(ctx, user)
		return
	}

	if err := ctx.Repo.DeleteDraft(user.UserId); err != nil {
		log.Printf("[MENU] ERROR deleting draft for admin %d: %v", user.UserId, err)
	}
	setMenu(ctx, user, objects.Menu_Idle)

	ctx.Send(messaging.NewHTMLMessage(user.UserId,
		fmt.Sprintf("Шаблон «%s» сохранён. Отправить его можно из раздела «Шаблоны».",
			messaging.Escape(template.Title))))
}

// CancelCompose drops the draft and returns the admin to the idle state
func CancelCompose(ctx *context.Context, user *objects.User) {
	log.Printf("[MENU] Admin %d cancelled composing", user.UserId)

	if err := ctx.Repo.DeleteDraft(user.UserId); err != nil {
		log.Printf("[MENU] ERROR deleting draft for admin %d: %v", user.UserId, err)
	}
	setMenu(ctx, user, objects.Menu_Idle)
	ctx.Send(messaging.NewHTMLMessage(user.UserId, "Создание рассылки отменено."))
}

// runDispatch performs the actual delivery in the background and reports the
// outcome back to the admin who launched it
func runDispatch(ctx *context.Context, adminId int64, broadcast *objects.Broadcast) {
	defer bugsink.Recover()

	dispatcher := mailing.NewDispatcher(ctx.Repo, ctx.GetBot())
	success, total, err := dispatcher.Dispatch(broadcast)
	if err != nil {
		log.Printf("[MENU] ERROR dispatching broadcast %d: %v", broadcast.ID, err)
		bugsink.CaptureError(err, map[string]interface{}{
			"broadcast_id": broadcast.ID,
			"audience":     broadcast.AudienceTag,
		})
		ctx.Send(messaging.NewHTMLMessage(adminId,
			fmt.Sprintf("Рассылка «%s» прервана ошибкой: %v",
				messaging.Escape(broadcast.Title), err)))
		return
	}

	ctx.Send(messaging.NewHTMLMessage(adminId, formatDispatchResult(broadcast.Title, success, total)))
}

// formatDispatchResult builds the completion message shown to the admin
func formatDispatchResult(title string, success, total int) string {
	if total == 0 {
		return fmt.Sprintf("Рассылка «%s» завершена: аудитория пуста, никому не отправлено.",
			messaging.Escape(title))
	}
	rate := float64(success) / float64(total) * 100
	return fmt.Sprintf("Рассылка «%s» завершена: доставлено %d из %d (%.1f%%).",
		messaging.Escape(title), success, total, rate)
}

func kindName(kind string) string {
	switch kind {
	case objects.KindText:
		return "нет"
	case objects.KindPhoto:
		return "фото"
	case objects.KindVideo:
		return "видео"
	case objects.KindDocument:
		return "документ"
	case objects.KindAudio:
		return "аудио"
	case objects.KindVoice:
		return "голосовое"
	case objects.KindAnimation:
		return "анимация"
	}
	return kind
}

func mediaKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Пропустить", "compose:skip_media"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Отмена", "compose:cancel"),
		),
	)
}

func cancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Отмена", "compose:cancel"),
		),
	)
}

func sendComposeError(ctx *context.Context, user *objects.User) {
	ctx.Send(messaging.NewHTMLMessage(user.UserId,
		"Что-то пошло не так. Попробуйте ещё раз через /admin."))
}
