package menu

import (
	"fmt"
	"log"
	"time"

	"mailcast/bugsink"
	"mailcast/context"
	"mailcast/messaging"
	"mailcast/objects"
	"mailcast/report"
)

// GenerateReport builds the Excel workbook in the background and queues it
// for upload to the requesting admin
func GenerateReport(ctx *context.Context, user *objects.User) {
	log.Printf("[MENU] Admin %d requested an Excel report", user.UserId)

	ctx.Send(messaging.NewHTMLMessage(user.UserId, "Формирую отчёт, это может занять минуту…"))

	go func() {
		defer bugsink.Recover()

		generator := report.NewGenerator(ctx.Repo, ctx.Config.Reports_Dir)
		path, err := generator.Generate()
		if err != nil {
			log.Printf("[MENU] ERROR generating report for admin %d: %v", user.UserId, err)
			bugsink.CaptureError(err, map[string]interface{}{
				"admin_id": user.UserId,
			})
			ctx.Send(messaging.NewHTMLMessage(user.UserId,
				"Не удалось сформировать отчёт. Попробуйте позже."))
			return
		}

		caption := fmt.Sprintf("Отчёт по боту на %s", time.Now().Format("02.01.2006 15:04"))
		if err := ctx.SendDocument(user.UserId, path, caption); err != nil {
			log.Printf("[MENU] ERROR queueing report upload for admin %d: %v", user.UserId, err)
			return
		}

		// Leftovers from failed uploads pile up, prune them
		if err := report.CleanupOldReports(ctx.Config.Reports_Dir, ctx.Config.Reports_Keep); err != nil {
			log.Printf("[MENU] ERROR cleaning old reports: %v", err)
		}
	}()
}
