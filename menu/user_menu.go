package menu

import (
	"fmt"
	"log"
	"mailcast/context"
	"mailcast/messaging"
	"mailcast/objects"
)

// Screens available to every user: welcome, help and the id echo.
// Everything else in this package is behind the admin allow-list.

func sendWelcome(ctx *context.Context, user *objects.User, isAdmin bool) {
	log.Printf("[MENU] Sending welcome to user %d", user.UserId)

	text := fmt.Sprintf(
		"Привет, %s!\n\n"+
			"Я бот для рассылки объявлений. Здесь вы будете получать новости и анонсы.\n\n"+
			"Команды:\n"+
			"/help — справка\n"+
			"/myid — ваш Telegram ID",
		messaging.Escape(user.DisplayName()),
	)
	if isAdmin {
		text += "\n/admin — панель администратора"
	}

	ctx.Send(messaging.NewHTMLMessage(user.UserId, text))
}

func sendHelp(ctx *context.Context, user *objects.User, isAdmin bool) {
	log.Printf("[MENU] Sending help to user %d", user.UserId)

	text := "Справка:\n\n" +
		"/start — начать работу с ботом\n" +
		"/help — эта справка\n" +
		"/myid — ваш Telegram ID\n\n" +
		"Бот присылает объявления и анонсы. Писать ему ничего не нужно."
	if isAdmin {
		text += "\n\nДля администраторов:\n" +
			"/admin — панель администратора\n" +
			"/cancel — прервать создание рассылки"
	}

	ctx.Send(messaging.NewHTMLMessage(user.UserId, text))
}

func sendMyId(ctx *context.Context, user *objects.User) {
	text := fmt.Sprintf("Ваш Telegram ID: <code>%d</code>", user.UserId)
	ctx.Send(messaging.NewHTMLMessage(user.UserId, text))
}
