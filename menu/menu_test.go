package menu

import (
	"fmt"
	"testing"
	"time"

	"mailcast/objects"
	"mailcast/repository"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/stretchr/testify/assert"
)

func TestIsComposeState(t *testing.T) {
	assert.False(t, isComposeState(objects.Menu_Idle))
	assert.True(t, isComposeState(objects.Menu_CollectingTitle))
	assert.True(t, isComposeState(objects.Menu_CollectingBody))
	assert.True(t, isComposeState(objects.Menu_CollectingMedia))
	assert.True(t, isComposeState(objects.Menu_CollectingAudience))
	assert.True(t, isComposeState(objects.Menu_Confirming))
}

func TestParseTemplateCallback(t *testing.T) {
	action, id, err := parseTemplateCallback("tpl:view:17")
	assert.NoError(t, err)
	assert.Equal(t, "view", action)
	assert.Equal(t, int64(17), id)

	action, _, err = parseTemplateCallback("tpl:back")
	assert.NoError(t, err)
	assert.Equal(t, "back", action)

	_, _, err = parseTemplateCallback("tpl:view:abc")
	assert.Error(t, err)

	_, _, err = parseTemplateCallback("tpl:view")
	assert.Error(t, err)
}

func TestParseTemplateAudienceCallback(t *testing.T) {
	id, tag, err := parseTemplateAudienceCallback("tplaud:42:active_week")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, objects.AudienceActiveWeek, tag)

	_, _, err = parseTemplateAudienceCallback("tplaud:42:everyone_ever")
	assert.Error(t, err)

	_, _, err = parseTemplateAudienceCallback("tplaud:x:all")
	assert.Error(t, err)

	_, _, err = parseTemplateAudienceCallback("tplaud:42")
	assert.Error(t, err)
}

func TestExtractMedia(t *testing.T) {
	t.Run("photo picks the largest size", func(t *testing.T) {
		photos := []tgbotapi.PhotoSize{
			{FileID: "small", Width: 90},
			{FileID: "large", Width: 800},
		}
		kind, fileID := extractMedia(&tgbotapi.Message{Photo: &photos})
		assert.Equal(t, objects.KindPhoto, kind)
		assert.Equal(t, "large", fileID)
	})

	t.Run("video", func(t *testing.T) {
		kind, fileID := extractMedia(&tgbotapi.Message{Video: &tgbotapi.Video{FileID: "vid"}})
		assert.Equal(t, objects.KindVideo, kind)
		assert.Equal(t, "vid", fileID)
	})

	t.Run("document", func(t *testing.T) {
		kind, fileID := extractMedia(&tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc"}})
		assert.Equal(t, objects.KindDocument, kind)
		assert.Equal(t, "doc", fileID)
	})

	t.Run("voice", func(t *testing.T) {
		kind, fileID := extractMedia(&tgbotapi.Message{Voice: &tgbotapi.Voice{FileID: "vc"}})
		assert.Equal(t, objects.KindVoice, kind)
		assert.Equal(t, "vc", fileID)
	})

	t.Run("plain text has no media", func(t *testing.T) {
		kind, fileID := extractMedia(&tgbotapi.Message{Text: "hello"})
		assert.Equal(t, "", kind)
		assert.Equal(t, "", fileID)
	})
}

func TestFormatDispatchResult(t *testing.T) {
	assert.Equal(t,
		"Рассылка «Launch» завершена: доставлено 4 из 5 (80.0%).",
		formatDispatchResult("Launch", 4, 5))

	assert.Equal(t,
		"Рассылка «Launch» завершена: аудитория пуста, никому не отправлено.",
		formatDispatchResult("Launch", 0, 0))

	// Titles are escaped before being embedded in HTML
	assert.Contains(t, formatDispatchResult("<b>x</b>", 1, 1), "&lt;b&gt;x&lt;/b&gt;")
}

func TestHistoryText(t *testing.T) {
	assert.Equal(t, "Рассылок ещё не было.", historyText(nil))

	rows := []*repository.BroadcastPerformanceRow{
		{
			Title:          "Launch",
			CreatedAt:      time.Date(2025, 8, 1, 12, 30, 0, 0, time.UTC),
			SentCount:      5,
			DeliveredCount: 4,
			DeliveryRate:   80.0,
		},
	}
	text := historyText(rows)
	assert.Contains(t, text, "Launch")
	assert.Contains(t, text, "01.08.2025 12:30")
	assert.Contains(t, text, "доставлено 4 из 5 (80.00%)")
}

func TestSharePercent(t *testing.T) {
	assert.Equal(t, "0%", sharePercent(5, 0))
	assert.Equal(t, "50.0%", sharePercent(5, 10))
	assert.Equal(t, "100.0%", sharePercent(10, 10))
}

func TestSegmentsTextPartition(t *testing.T) {
	segments := &repository.UserSegments{
		NewUsers:        2,
		ActiveUsers:     3,
		InactiveUsers:   1,
		WithUsername:    4,
		WithoutUsername: 6,
	}
	text := segmentsText(segments, 10)

	assert.Contains(t, text, "С username: 4 (40.0%)")
	assert.Contains(t, text, "Без username: 6 (60.0%)")
	assert.Contains(t, text, "Новые (7 дней): 2 (20.0%)")
}

func TestGrowthText(t *testing.T) {
	assert.Contains(t, growthText(nil), "регистраций не было")

	points := []*repository.DayCount{
		{Day: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), Count: 3},
		{Day: time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC), Count: 2},
	}
	text := growthText(points)

	assert.Contains(t, text, "01.08 — +3 (всего 3)")
	assert.Contains(t, text, "02.08 — +2 (всего 5)")
}

func TestStatsTextZeroDeliveries(t *testing.T) {
	stats := &repository.DetailedStats{TotalUsers: 3}
	text := statsText(stats)

	// Nothing sent yet must render as 0%, not blow up on division
	assert.Contains(t, text, "доставляемость: 0.00%")
}

func TestTemplatesKeyboardPagination(t *testing.T) {
	var templates []*objects.Broadcast
	for i := int64(1); i <= 12; i++ {
		templates = append(templates, &objects.Broadcast{ID: i, Title: fmt.Sprintf("Tpl %d", i)})
	}

	collect := func(kb tgbotapi.InlineKeyboardMarkup) []string {
		var data []string
		for _, row := range kb.InlineKeyboard {
			for _, button := range row {
				data = append(data, *button.CallbackData)
			}
		}
		return data
	}

	// First page: five templates plus only a next button
	first := collect(templatesKeyboard(templates, 0))
	assert.Equal(t, []string{
		"tpl:view:1", "tpl:view:2", "tpl:view:3", "tpl:view:4", "tpl:view:5",
		"tpl:page:1",
	}, first)

	// Middle page navigates both ways
	middle := collect(templatesKeyboard(templates, 1))
	assert.Contains(t, middle, "tpl:page:0")
	assert.Contains(t, middle, "tpl:page:2")
	assert.Contains(t, middle, "tpl:view:6")

	// Last page: the two remaining templates plus only a prev button
	last := collect(templatesKeyboard(templates, 2))
	assert.Equal(t, []string{"tpl:view:11", "tpl:view:12", "tpl:page:1"}, last)

	// A page number is parsed like any other template action
	action, page, err := parseTemplateCallback("tpl:page:2")
	assert.NoError(t, err)
	assert.Equal(t, "page", action)
	assert.Equal(t, int64(2), page)
}

func TestUsersText(t *testing.T) {
	all := []*objects.User{
		{UserId: 1, Username: "alice", JoinedAt: time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)},
		{UserId: 2, FirstName: "<Bob>", JoinedAt: time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC)},
	}
	text := usersText(all, all)

	assert.Contains(t, text, "Всего: 2")
	assert.Contains(t, text, "@alice — 20.08.2025")
	assert.Contains(t, text, "&lt;Bob&gt;")
}

func TestUserType(t *testing.T) {
	assert.Equal(t, "new", userType(true))
	assert.Equal(t, "returning", userType(false))
}

func TestAdminPanelKeyboardCoversAllScreens(t *testing.T) {
	var data []string
	for _, row := range adminPanelKeyboard().InlineKeyboard {
		for _, button := range row {
			data = append(data, *button.CallbackData)
		}
	}
	assert.ElementsMatch(t, []string{
		"admin:compose", "admin:templates", "admin:history",
		"admin:stats", "admin:users", "admin:report", "admin:refresh",
	}, data)
}

func TestConfirmKeyboardActions(t *testing.T) {
	var data []string
	for _, row := range confirmKeyboard().InlineKeyboard {
		for _, button := range row {
			data = append(data, *button.CallbackData)
		}
	}
	assert.ElementsMatch(t, []string{
		"confirm:send", "confirm:edit_body", "confirm:edit_media",
		"confirm:template", "confirm:back", "confirm:cancel",
	}, data)
}
