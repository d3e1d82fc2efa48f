package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"mailcast/metrics"
	"mailcast/objects"
	"mailcast/repository"

	"github.com/xuri/excelize/v2"
)

const (
	leaderboardSize = 50
	trendWindowDays = 30
	historyLimit    = 1000
)

// Stats is the slice of the repository the report generator reads from
type Stats interface {
	GetDetailedStats() (*repository.DetailedStats, error)
	GetBroadcastPerformance() ([]*repository.BroadcastPerformanceRow, error)
	GetUserSegments() (*repository.UserSegments, error)
	GetUserGrowth(days int) ([]*repository.DayCount, error)
	GetDailyActivity(days int) ([]*repository.DayCount, error)
	GetTopActiveUsers(limit int) ([]*repository.ActiveUserRow, error)
	GetAllUsers() ([]*objects.User, error)
	ListBroadcasts(limit int) ([]*objects.Broadcast, error)
}

// Generator builds the admin Excel report
type Generator struct {
	stats Stats
	dir   string
}

func NewGenerator(stats Stats, dir string) *Generator {
	log.Printf("[REPORT] Creating report generator (output dir: %s)", dir)
	return &Generator{
		stats: stats,
		dir:   dir,
	}
}

// Generate writes a full workbook to the reports directory and returns its path
func (g *Generator) Generate() (string, error) {
	log.Println("[REPORT] Generating Excel report")
	start := time.Now()

	if err := os.MkdirAll(g.dir, 0755); err != nil {
		log.Printf("[REPORT] ERROR creating reports directory: %v", err)
		metrics.RecordReportGenerated(false)
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		metrics.RecordReportGenerated(false)
		return "", err
	}

	builders := []func(*excelize.File, int) error{
		g.writeSummary,
		g.writeUsers,
		g.writeLeaderboard,
		g.writeDailyActivity,
		g.writeBroadcasts,
		g.writePerformance,
		g.writeGrowth,
		g.writeSegments,
	}

	for i, build := range builders {
		if err := build(f, headerStyle); err != nil {
			log.Printf("[REPORT] ERROR building sheet %d: %v", i+1, err)
			metrics.RecordReportGenerated(false)
			return "", err
		}
	}

	path := filepath.Join(g.dir, fmt.Sprintf("mailcast_report_%s.xlsx",
		time.Now().Format("20060102_150405")))

	if err := f.SaveAs(path); err != nil {
		log.Printf("[REPORT] ERROR saving report to %s: %v", path, err)
		metrics.RecordReportGenerated(false)
		return "", err
	}

	metrics.RecordReportGenerated(true)
	log.Printf("[REPORT] Report saved to %s (took %v)", path, time.Since(start))
	return path, nil
}

func (g *Generator) writeSummary(f *excelize.File, headerStyle int) error {
	stats, err := g.stats.GetDetailedStats()
	if err != nil {
		return err
	}

	const sheet = "Сводка"
	// The workbook starts with a default sheet, reuse it for the first page
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	writeHeader(f, sheet, headerStyle, "Показатель", "Значение")
	f.SetColWidth(sheet, "A", "A", 36)
	f.SetColWidth(sheet, "B", "B", 16)

	rows := []struct {
		label string
		value interface{}
	}{
		{"Всего пользователей", stats.TotalUsers},
		{"Новых за сегодня", stats.NewUsersToday},
		{"Новых за неделю", stats.NewUsersWeek},
		{"Новых за месяц", stats.NewUsersMonth},
		{"Активных за сегодня", stats.ActiveUsersToday},
		{"Активных за неделю", stats.ActiveUsersWeek},
		{"Всего рассылок", stats.TotalBroadcasts},
		{"Всего отправлено сообщений", stats.TotalSentMessages},
		{"Успешных доставок", stats.SuccessfulDeliveries},
		{"Неудачных доставок", stats.FailedDeliveries},
		{"Доставляемость, %", stats.DeliveryRate()},
		{"Среднее число действий на пользователя", stats.AvgActivityPerUser},
	}

	for i, row := range rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), row.label)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), row.value)
	}

	f.SetCellValue(sheet, fmt.Sprintf("A%d", len(rows)+3), "Сформирован")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", len(rows)+3), time.Now().Format("2006-01-02 15:04"))
	return nil
}

func (g *Generator) writeUsers(f *excelize.File, headerStyle int) error {
	users, err := g.stats.GetAllUsers()
	if err != nil {
		return err
	}

	const sheet = "Пользователи"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeHeader(f, sheet, headerStyle, "ID", "Username", "Имя", "Фамилия", "Дата регистрации", "Последняя активность")
	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "D", 20)
	f.SetColWidth(sheet, "E", "F", 20)

	for i, u := range users {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), u.UserId)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), u.Username)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), u.FirstName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), u.LastName)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), u.JoinedAt.Format("2006-01-02 15:04"))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), u.LastActivityAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (g *Generator) writeLeaderboard(f *excelize.File, headerStyle int) error {
	top, err := g.stats.GetTopActiveUsers(leaderboardSize)
	if err != nil {
		return err
	}

	const sheet = "Топ активных"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeHeader(f, sheet, headerStyle, "Место", "ID", "Username", "Имя", "Действий")
	f.SetColWidth(sheet, "B", "D", 20)

	for i, row := range top {
		r := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), i+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.UserID)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", r), row.Username)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", r), row.FirstName)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", r), row.ActivityCount)
	}
	return nil
}

func (g *Generator) writeDailyActivity(f *excelize.File, headerStyle int) error {
	points, err := g.stats.GetDailyActivity(trendWindowDays)
	if err != nil {
		return err
	}

	const sheet = "Активность по дням"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeHeader(f, sheet, headerStyle, "День", "Действий")
	f.SetColWidth(sheet, "A", "A", 14)

	for i, point := range points {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), point.Day.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), point.Count)
	}
	return nil
}

func (g *Generator) writeBroadcasts(f *excelize.File, headerStyle int) error {
	broadcasts, err := g.stats.ListBroadcasts(historyLimit)
	if err != nil {
		return err
	}

	const sheet = "Рассылки"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeHeader(f, sheet, headerStyle, "ID", "Заголовок", "Тип", "Аудитория", "Отправлено", "Дата")
	f.SetColWidth(sheet, "B", "B", 36)
	f.SetColWidth(sheet, "C", "D", 18)
	f.SetColWidth(sheet, "F", "F", 18)

	for i, b := range broadcasts {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), b.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), b.Title)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), b.Kind)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), objects.AudienceTagName(b.AudienceTag))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), b.SentCount)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), b.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (g *Generator) writePerformance(f *excelize.File, headerStyle int) error {
	rows, err := g.stats.GetBroadcastPerformance()
	if err != nil {
		return err
	}

	const sheet = "Эффективность"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeHeader(f, sheet, headerStyle, "ID", "Заголовок", "Попыток", "Доставлено", "Доставляемость, %", "Дата")
	f.SetColWidth(sheet, "B", "B", 36)
	f.SetColWidth(sheet, "E", "E", 18)
	f.SetColWidth(sheet, "F", "F", 18)

	for i, row := range rows {
		r := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), row.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.Title)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", r), row.SentCount)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", r), row.DeliveredCount)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", r), row.DeliveryRate)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", r), row.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (g *Generator) writeGrowth(f *excelize.File, headerStyle int) error {
	points, err := g.stats.GetUserGrowth(trendWindowDays)
	if err != nil {
		return err
	}

	const sheet = "Рост аудитории"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeHeader(f, sheet, headerStyle, "День", "Новых", "Накопительно")
	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "C", "C", 16)

	cumulative := 0
	for i, point := range points {
		cumulative += point.Count
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), point.Day.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), point.Count)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), cumulative)
	}
	return nil
}

func (g *Generator) writeSegments(f *excelize.File, headerStyle int) error {
	segments, err := g.stats.GetUserSegments()
	if err != nil {
		return err
	}
	stats, err := g.stats.GetDetailedStats()
	if err != nil {
		return err
	}

	const sheet = "Сегменты"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeHeader(f, sheet, headerStyle, "Сегмент", "Пользователей", "Доля, %")
	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 16)

	rows := []struct {
		label string
		count int
	}{
		{"Новые (7 дней)", segments.NewUsers},
		{"Активные (7 дней)", segments.ActiveUsers},
		{"Неактивные (30 дней)", segments.InactiveUsers},
		{"С username", segments.WithUsername},
		{"Без username", segments.WithoutUsername},
	}

	for i, row := range rows {
		r := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), row.label)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.count)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", r), percentage(row.count, stats.TotalUsers))
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, styleID int, headers ...string) {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", last, styleID)
}

// percentage returns part/total*100 rounded to 2 decimals, 0 for an empty base
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(int(float64(part)/float64(total)*100*100+0.5)) / 100
}

// CleanupOldReports removes all but the newest keepLast workbooks.
// File names embed a sortable timestamp, so lexicographic order is
// chronological order.
func CleanupOldReports(dir string, keepLast int) error {
	files, err := filepath.Glob(filepath.Join(dir, "mailcast_report_*.xlsx"))
	if err != nil {
		return err
	}

	if len(files) <= keepLast {
		return nil
	}

	sort.Strings(files)
	stale := files[:len(files)-keepLast]
	for _, file := range stale {
		if err := os.Remove(file); err != nil {
			log.Printf("[REPORT] ERROR removing old report %s: %v", file, err)
			return err
		}
		log.Printf("[REPORT] Removed old report %s", file)
	}

	return nil
}
