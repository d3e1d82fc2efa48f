package menu

import (
	"fmt"
	"log"
	"strings"

	"mailcast/context"
	"mailcast/messaging"
	"mailcast/objects"
	"mailcast/repository"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

const (
	leaderboardScreenSize = 10
	growthWindowDays      = 30
)

// ShowStats sends the aggregate statistics screen
func ShowStats(ctx *context.Context, user *objects.User) {
	log.Printf("[MENU] Showing stats to admin %d", user.UserId)

	stats, err := ctx.Repo.GetDetailedStats()
	if err != nil {
		log.Printf("[MENU] ERROR loading stats: %v", err)
		sendComposeError(ctx, user)
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Сегменты", "stats:segments"),
			tgbotapi.NewInlineKeyboardButtonData("Топ активных", "stats:top"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Рост аудитории", "stats:growth"),
		),
	)
	ctx.Send(messaging.NewHTMLKeyboardMessage(user.UserId, statsText(stats), keyboard))
}

func statsText(stats *repository.DetailedStats) string {
	return fmt.Sprintf(
		"<b>Статистика</b>\n\n"+
			"👥 Пользователи: %d\n"+
			"   новых сегодня: %d, за неделю: %d, за месяц: %d\n"+
			"   активных сегодня: %d, за неделю: %d\n\n"+
			"📣 Рассылки: %d (отправлено сообщений: %d)\n"+
			"   доставок: %d успешных, %d неудачных\n"+
			"   доставляемость: %.2f%%\n\n"+
			"📈 Среднее число действий на активного пользователя: %.2f",
		stats.TotalUsers,
		stats.NewUsersToday, stats.NewUsersWeek, stats.NewUsersMonth,
		stats.ActiveUsersToday, stats.ActiveUsersWeek,
		stats.TotalBroadcasts, stats.TotalSentMessages,
		stats.SuccessfulDeliveries, stats.FailedDeliveries,
		stats.DeliveryRate(),
		stats.AvgActivityPerUser)
}

// HandleStatsCallback routes the statistics sub-screens
func HandleStatsCallback(ctx *context.Context, user *objects.User, callback *tgbotapi.CallbackQuery) {
	ctx.AnswerCallbackQuery(tgbotapi.NewCallback(callback.ID, ""))

	switch callback.Data {
	case "stats:segments":
		showSegments(ctx, user)
	case "stats:top":
		showLeaderboard(ctx, user)
	case "stats:growth":
		showGrowth(ctx, user)
	case "stats:back":
		ShowStats(ctx, user)
	default:
		log.Printf("[MENU] Unknown stats callback '%s'", callback.Data)
	}
}

func showSegments(ctx *context.Context, user *objects.User) {
	segments, err := ctx.Repo.GetUserSegments()
	if err != nil {
		log.Printf("[MENU] ERROR loading segments: %v", err)
		sendComposeError(ctx, user)
		return
	}
	total, err := ctx.Repo.GetUserCount()
	if err != nil {
		log.Printf("[MENU] ERROR counting users for segments: %v", err)
		sendComposeError(ctx, user)
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "stats:back"),
		),
	)
	ctx.Send(messaging.NewHTMLKeyboardMessage(user.UserId, segmentsText(segments, total), keyboard))
}

func segmentsText(segments *repository.UserSegments, total int) string {
	return fmt.Sprintf(
		"<b>Сегменты пользователей</b>\n\n"+
			"Новые (7 дней): %d (%s)\n"+
			"Активные (7 дней): %d (%s)\n"+
			"Неактивные (30 дней): %d (%s)\n"+
			"С username: %d (%s)\n"+
			"Без username: %d (%s)",
		segments.NewUsers, sharePercent(segments.NewUsers, total),
		segments.ActiveUsers, sharePercent(segments.ActiveUsers, total),
		segments.InactiveUsers, sharePercent(segments.InactiveUsers, total),
		segments.WithUsername, sharePercent(segments.WithUsername, total),
		segments.WithoutUsername, sharePercent(segments.WithoutUsername, total))
}

// sharePercent formats part of total as a percentage, "0%" for an empty base
func sharePercent(part, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}

func showGrowth(ctx *context.Context, user *objects.User) {
	points, err := ctx.Repo.GetUserGrowth(growthWindowDays)
	if err != nil {
		log.Printf("[MENU] ERROR loading user growth: %v", err)
		sendComposeError(ctx, user)
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "stats:back"),
		),
	)
	ctx.Send(messaging.NewHTMLKeyboardMessage(user.UserId, growthText(points), keyboard))
}

func growthText(points []*repository.DayCount) string {
	if len(points) == 0 {
		return "<b>Рост аудитории</b>\n\nЗа последние 30 дней регистраций не было."
	}

	var sb strings.Builder
	sb.WriteString("<b>Рост аудитории за 30 дней</b>\n")
	cumulative := 0
	for _, point := range points {
		cumulative += point.Count
		sb.WriteString(fmt.Sprintf("\n%s — +%d (всего %d)",
			point.Day.Format("02.01"), point.Count, cumulative))
	}
	return sb.String()
}

func showLeaderboard(ctx *context.Context, user *objects.User) {
	top, err := ctx.Repo.GetTopActiveUsers(leaderboardScreenSize)
	if err != nil {
		log.Printf("[MENU] ERROR loading leaderboard: %v", err)
		sendComposeError(ctx, user)
		return
	}

	var sb strings.Builder
	sb.WriteString("<b>Топ активных пользователей</b>\n")
	if len(top) == 0 {
		sb.WriteString("\nПока никто не проявлял активности.")
	}
	for i, row := range top {
		name := row.Username
		if name != "" {
			name = "@" + name
		} else if row.FirstName != "" {
			name = row.FirstName
		} else {
			name = fmt.Sprintf("id%d", row.UserID)
		}
		sb.WriteString(fmt.Sprintf("\n%d. %s — %d действий",
			i+1, messaging.Escape(name), row.ActivityCount))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "stats:back"),
		),
	)
	ctx.Send(messaging.NewHTMLKeyboardMessage(user.UserId, sb.String(), keyboard))
}
