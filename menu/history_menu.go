package menu

import (
	"fmt"
	"log"
	"strings"

	"mailcast/context"
	"mailcast/messaging"
	"mailcast/objects"
	"mailcast/repository"
)

const historyPageSize = 10

// ShowHistory sends the recent-broadcast list with per-broadcast delivery rates.
// Rates come from delivery records, not from the cached counter.
func ShowHistory(ctx *context.Context, user *objects.User) {
	log.Printf("[MENU] Showing broadcast history to admin %d", user.UserId)

	rows, err := ctx.Repo.GetBroadcastPerformance()
	if err != nil {
		log.Printf("[MENU] ERROR loading broadcast performance: %v", err)
		sendComposeError(ctx, user)
		return
	}

	if len(rows) > historyPageSize {
		rows = rows[:historyPageSize]
	}

	ctx.Send(messaging.NewHTMLMessage(user.UserId, historyText(rows)))
}

func historyText(rows []*repository.BroadcastPerformanceRow) string {
	if len(rows) == 0 {
		return "Рассылок ещё не было."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>Последние рассылки</b> (%d)\n", len(rows)))
	for i, row := range rows {
		sb.WriteString(fmt.Sprintf("\n%d. <b>%s</b>\n   %s · доставлено %d из %d (%.2f%%)",
			i+1,
			messaging.Escape(row.Title),
			row.CreatedAt.Format("02.01.2006 15:04"),
			row.DeliveredCount, row.SentCount, row.DeliveryRate))
	}
	return sb.String()
}
