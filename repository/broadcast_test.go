package repository

import (
	"testing"
	"time"

	"mailcast/objects"
)

func cleanupBroadcast(t *testing.T, repo *Repository, id *int64) {
	t.Cleanup(func() {
		if *id != 0 {
			repo.db.Exec(`DELETE FROM delivery_records WHERE broadcast_id = $1`, *id)
			repo.db.Exec(`DELETE FROM broadcasts WHERE id = $1`, *id)
		}
	})
}

func TestCreateAndGetBroadcast(t *testing.T) {
	repo := setupTestDB(t)
	if repo == nil {
		return
	}

	b := objects.NewBroadcast("Title", "Body", objects.KindPhoto, "file123", objects.AudienceAll, false)
	cleanupBroadcast(t, repo, &b.ID)

	if err := repo.CreateBroadcast(b); err != nil {
		t.Fatalf("Failed to create broadcast: %v", err)
	}
	if b.ID == 0 {
		t.Fatal("CreateBroadcast must fill in the ID")
	}

	found, err := repo.GetBroadcast(b.ID)
	if err != nil {
		t.Fatalf("Failed to get broadcast: %v", err)
	}
	if found == nil {
		t.Fatal("Broadcast not found after create")
	}
	if found.Title != "Title" || found.Kind != objects.KindPhoto || found.MediaFileID != "file123" {
		t.Errorf("Broadcast round trip lost data: %+v", found)
	}
	if found.SentCount != 0 {
		t.Errorf("Fresh broadcast should have a zero counter, got %d", found.SentCount)
	}
}

func TestGetBroadcastMissing(t *testing.T) {
	repo := setupTestDB(t)
	if repo == nil {
		return
	}

	found, err := repo.GetBroadcast(999999999)
	if err != nil {
		t.Fatalf("Missing broadcast must not be an error: %v", err)
	}
	if found != nil {
		t.Error("Missing broadcast must come back nil")
	}
}

func TestTemplateFlagLifecycle(t *testing.T) {
	repo := setupTestDB(t)
	if repo == nil {
		return
	}

	template := objects.NewBroadcast("Tpl", "Body", objects.KindText, "", objects.AudienceAll, true)
	cleanupBroadcast(t, repo, &template.ID)

	if err := repo.CreateBroadcast(template); err != nil {
		t.Fatalf("Failed to create template: %v", err)
	}

	templates, err := repo.ListTemplates()
	if err != nil {
		t.Fatalf("Failed to list templates: %v", err)
	}
	if !containsBroadcast(templates, template.ID) {
		t.Error("Created template missing from template list")
	}

	// Deleting a template clears the flag but keeps the row
	if err := repo.SetTemplateFlag(template.ID, false); err != nil {
		t.Fatalf("Failed to clear template flag: %v", err)
	}

	templates, _ = repo.ListTemplates()
	if containsBroadcast(templates, template.ID) {
		t.Error("Cleared template still in template list")
	}

	found, _ := repo.GetBroadcast(template.ID)
	if found == nil {
		t.Error("Row must survive template deletion")
	}
}

func TestDeliveryRecordsAndSentCount(t *testing.T) {
	repo := setupTestDB(t)
	if repo == nil {
		return
	}

	b := objects.NewBroadcast("Perf", "Body", objects.KindText, "", objects.AudienceAll, false)
	cleanupBroadcast(t, repo, &b.ID)

	if err := repo.CreateBroadcast(b); err != nil {
		t.Fatalf("Failed to create broadcast: %v", err)
	}

	// 4 delivered, 1 failed
	for i := 0; i < 4; i++ {
		if err := repo.AppendDeliveryRecord(b.ID, int64(920000+i), objects.DeliveryStatusSent); err != nil {
			t.Fatalf("Failed to append delivery record: %v", err)
		}
	}
	if err := repo.AppendDeliveryRecord(b.ID, 920004, objects.DeliveryStatusFailed); err != nil {
		t.Fatalf("Failed to append failed record: %v", err)
	}

	if err := repo.SetBroadcastSentCount(b.ID, 4); err != nil {
		t.Fatalf("Failed to set sent count: %v", err)
	}

	found, _ := repo.GetBroadcast(b.ID)
	if found.SentCount != 4 {
		t.Errorf("Expected sent count 4, got %d", found.SentCount)
	}

	rows, err := repo.GetBroadcastPerformance()
	if err != nil {
		t.Fatalf("Failed to compute performance: %v", err)
	}
	for _, row := range rows {
		if row.ID != b.ID {
			continue
		}
		if row.SentCount != 5 || row.DeliveredCount != 4 {
			t.Errorf("Expected 4/5 from records, got %d/%d", row.DeliveredCount, row.SentCount)
		}
		if row.DeliveryRate != 80.0 {
			t.Errorf("Expected 80.00 rate, got %v", row.DeliveryRate)
		}
		return
	}
	t.Error("Broadcast missing from performance rows")
}

func TestPerformanceRateWithoutRecords(t *testing.T) {
	repo := setupTestDB(t)
	if repo == nil {
		return
	}

	b := objects.NewBroadcast("Empty", "Body", objects.KindText, "", objects.AudienceAll, false)
	cleanupBroadcast(t, repo, &b.ID)

	if err := repo.CreateBroadcast(b); err != nil {
		t.Fatalf("Failed to create broadcast: %v", err)
	}

	rows, err := repo.GetBroadcastPerformance()
	if err != nil {
		t.Fatalf("Failed to compute performance: %v", err)
	}
	for _, row := range rows {
		if row.ID == b.ID {
			// No records means 0 rate, never a division error
			if row.DeliveryRate != 0 {
				t.Errorf("Expected 0 rate without records, got %v", row.DeliveryRate)
			}
			return
		}
	}
	t.Error("Broadcast missing from performance rows")
}

func TestDraftLifecycle(t *testing.T) {
	repo := setupTestDB(t)
	if repo == nil {
		return
	}

	adminId := int64(930001)
	t.Cleanup(func() { repo.db.Exec(`DELETE FROM broadcast_drafts WHERE admin_id = $1`, adminId) })

	draft := objects.NewDraft(adminId)
	draft.Title = "WIP"
	if err := repo.SaveDraft(draft); err != nil {
		t.Fatalf("Failed to save draft: %v", err)
	}

	// Upsert keeps one draft per admin
	draft.Body = "Body"
	if err := repo.SaveDraft(draft); err != nil {
		t.Fatalf("Failed to re-save draft: %v", err)
	}

	found, err := repo.FindDraft(adminId)
	if err != nil {
		t.Fatalf("Failed to find draft: %v", err)
	}
	if found == nil || found.Title != "WIP" || found.Body != "Body" {
		t.Errorf("Draft round trip lost data: %+v", found)
	}

	if err := repo.DeleteDraft(adminId); err != nil {
		t.Fatalf("Failed to delete draft: %v", err)
	}
	found, _ = repo.FindDraft(adminId)
	if found != nil {
		t.Error("Draft still present after delete")
	}
}

func TestExpiredDraftIsDiscarded(t *testing.T) {
	repo := setupTestDB(t)
	if repo == nil {
		return
	}

	adminId := int64(930002)
	t.Cleanup(func() { repo.db.Exec(`DELETE FROM broadcast_drafts WHERE admin_id = $1`, adminId) })

	// Plant an already-expired draft directly
	_, err := repo.db.Exec(
		`INSERT INTO broadcast_drafts (admin_id, title, updated_at) VALUES ($1, 'old', $2)`,
		adminId, time.Now().UTC().Add(-objects.DraftTTL-time.Hour),
	)
	if err != nil {
		t.Fatalf("Failed to plant expired draft: %v", err)
	}

	found, err := repo.FindDraft(adminId)
	if err != nil {
		t.Fatalf("FindDraft failed: %v", err)
	}
	if found != nil {
		t.Error("Expired draft must come back nil")
	}

	var count int
	repo.db.QueryRow(`SELECT COUNT(*) FROM broadcast_drafts WHERE admin_id = $1`, adminId).Scan(&count)
	if count != 0 {
		t.Error("Expired draft must be deleted on read")
	}
}

func containsBroadcast(list []*objects.Broadcast, id int64) bool {
	for _, b := range list {
		if b.ID == id {
			return true
		}
	}
	return false
}
