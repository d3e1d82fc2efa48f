package menu

import (
	"log"
	"mailcast/context"
	"mailcast/messaging"
	"mailcast/metrics"
	"mailcast/objects"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// The denial is identical for every admin action so outsiders cannot
// probe which screens exist
const accessDeniedText = "Эта команда доступна только администраторам."

// HandleMessage routes one incoming message: registration, activity tracking,
// commands, and the admin compose flow.
func HandleMessage(ctx *context.Context, userId int64, message *tgbotapi.Message) {
	startTime := time.Now()
	log.Printf("[MENU] Handling message from user %d: '%s'", userId, message.Text)

	user, isNewUser := ensureUser(ctx, userId, message)
	if user == nil {
		return
	}

	isAdmin := ctx.Config.IsAdmin(userId)

	switch message.Text {
	case "/start":
		log.Printf("[MENU] User %d sent /start command", userId)
		trackActivity(ctx, userId, objects.ActionStart)
		metrics.RecordCommand("/start", userType(isNewUser))
		sendWelcome(ctx, user, isAdmin)

	case "/help":
		log.Printf("[MENU] User %d sent /help command", userId)
		trackActivity(ctx, userId, objects.ActionHelp)
		metrics.RecordCommand("/help", userType(isNewUser))
		sendHelp(ctx, user, isAdmin)

	case "/myid":
		log.Printf("[MENU] User %d sent /myid command", userId)
		trackActivity(ctx, userId, objects.ActionMyId)
		metrics.RecordCommand("/myid", userType(isNewUser))
		sendMyId(ctx, user)

	case "/admin":
		trackActivity(ctx, userId, objects.ActionMessage)
		if !isAdmin {
			log.Printf("[MENU] User %d tried /admin without access", userId)
			ctx.Send(messaging.NewHTMLMessage(userId, accessDeniedText))
			return
		}
		metrics.RecordCommand("/admin", "admin")
		ShowAdminPanel(ctx, user)

	case "/cancel":
		trackActivity(ctx, userId, objects.ActionMessage)
		if isAdmin && isComposeState(user.MenuId) {
			CancelCompose(ctx, user)
		}

	default:
		trackActivity(ctx, userId, objects.ActionMessage)
		if isAdmin && isComposeState(user.MenuId) {
			HandleComposeMessage(ctx, user, message)
		}
	}

	log.Printf("[MENU] Message handling completed for user %d (duration: %v)",
		userId, time.Since(startTime))
}

// HandleCallback routes inline button presses. All admin screens are
// callback-driven, so everything past the user lookup is admin-only.
func HandleCallback(ctx *context.Context, userId int64, callback *tgbotapi.CallbackQuery) {
	log.Printf("[MENU] Handling callback from user %d: data=%s", userId, callback.Data)

	user := ctx.Repo.FindUser(userId)
	if user == nil {
		log.Printf("[MENU] User %d not found for callback", userId)
		return
	}

	if !ctx.Config.IsAdmin(userId) {
		log.Printf("[MENU] Non-admin %d pressed an admin button, ignoring", userId)
		ctx.AnswerCallbackQuery(tgbotapi.NewCallback(callback.ID, accessDeniedText))
		return
	}

	switch {
	case strings.HasPrefix(callback.Data, "admin:"):
		HandleAdminCallback(ctx, user, callback)
	case strings.HasPrefix(callback.Data, "compose:"):
		HandleComposeCallback(ctx, user, callback)
	case strings.HasPrefix(callback.Data, "aud:"):
		HandleAudienceCallback(ctx, user, callback)
	case strings.HasPrefix(callback.Data, "confirm:"):
		HandleConfirmCallback(ctx, user, callback)
	case strings.HasPrefix(callback.Data, "tplaud:"):
		HandleTemplateAudienceCallback(ctx, user, callback)
	case strings.HasPrefix(callback.Data, "tpl:"):
		HandleTemplateCallback(ctx, user, callback)
	case strings.HasPrefix(callback.Data, "stats:"):
		HandleStatsCallback(ctx, user, callback)
	default:
		log.Printf("[MENU] No callback handler for data '%s'", callback.Data)
		ctx.AnswerCallbackQuery(tgbotapi.NewCallback(callback.ID, ""))
	}
}

// ensureUser registers an unseen user with first-contact fields and returns
// the stored record. Display fields are never overwritten on repeat contact.
func ensureUser(ctx *context.Context, userId int64, message *tgbotapi.Message) (*objects.User, bool) {
	user := ctx.Repo.FindUser(userId)
	if user != nil {
		return user, false
	}

	log.Printf("[MENU] Registering new user %d", userId)

	var username, firstName, lastName string
	if message.From != nil {
		username = message.From.UserName
		firstName = message.From.FirstName
		lastName = message.From.LastName
	}

	fresh := objects.NewUser(userId, username, firstName, lastName)
	inserted, err := ctx.Repo.UpsertUser(fresh)
	if err != nil {
		log.Printf("[MENU] ERROR registering user %d: %v", userId, err)
		return nil, false
	}

	if inserted {
		metrics.RecordNewUser()
		return fresh, true
	}

	// Lost the insert race, read back whoever won
	return ctx.Repo.FindUser(userId), false
}

func trackActivity(ctx *context.Context, userId int64, action string) {
	if err := ctx.Repo.RecordActivity(userId, action); err != nil {
		log.Printf("[MENU] ERROR recording activity for user %d: %v", userId, err)
	}
	metrics.RecordUserActivity(action)
}

// setMenu moves the user to a new menu state and records the transition
func setMenu(ctx *context.Context, user *objects.User, menuId objects.MenuId) {
	if user.MenuId == menuId {
		return
	}
	if err := ctx.Repo.SetUserMenu(user.UserId, menuId); err != nil {
		log.Printf("[MENU] ERROR setting menu state for user %d: %v", user.UserId, err)
		return
	}
	metrics.RecordMenuTransition(user.MenuId, menuId)
	user.MenuId = menuId
}

func isComposeState(menuId objects.MenuId) bool {
	switch menuId {
	case objects.Menu_CollectingTitle, objects.Menu_CollectingBody, objects.Menu_CollectingMedia,
		objects.Menu_CollectingAudience, objects.Menu_Confirming:
		return true
	}
	return false
}

func userType(isNewUser bool) string {
	if isNewUser {
		return "new"
	}
	return "returning"
}
