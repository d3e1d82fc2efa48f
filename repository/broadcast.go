package repository

import (
	"database/sql"
	"log"
	"mailcast/objects"
	"time"
)

// CreateBroadcast persists a broadcast (or template) and fills in its ID
func (repo *Repository) CreateBroadcast(b *objects.Broadcast) error {
	log.Printf("[REPOSITORY] Creating broadcast '%s' (kind: %s, audience: %s, template: %t)",
		b.Title, b.Kind, b.AudienceTag, b.IsTemplate)

	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	err := repo.db.QueryRow(
		`INSERT INTO broadcasts (title, body, kind, media_file_id, audience_tag, is_template, sent_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7)
		RETURNING id`,
		b.Title, b.Body, b.Kind, b.MediaFileID, b.AudienceTag, b.IsTemplate, b.CreatedAt,
	).Scan(&b.ID)

	if err != nil {
		log.Printf("[REPOSITORY] Error creating broadcast: %v", err)
		return err
	}

	log.Printf("[REPOSITORY] Broadcast created with ID: %d", b.ID)
	return nil
}

// GetBroadcast retrieves a broadcast by ID, nil when not found
func (repo *Repository) GetBroadcast(id int64) (*objects.Broadcast, error) {
	log.Printf("[REPOSITORY] Getting broadcast %d", id)

	b := &objects.Broadcast{}
	err := repo.db.QueryRow(
		`SELECT id, title, body, kind, media_file_id, audience_tag, is_template, sent_count, created_at
		FROM broadcasts
		WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.Title, &b.Body, &b.Kind, &b.MediaFileID, &b.AudienceTag,
		&b.IsTemplate, &b.SentCount, &b.CreatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("[REPOSITORY] Broadcast %d not found", id)
			return nil, nil
		}
		log.Printf("[REPOSITORY] Error getting broadcast %d: %v", id, err)
		return nil, err
	}

	return b, nil
}

// ListBroadcasts returns dispatched broadcasts (not templates), newest first
func (repo *Repository) ListBroadcasts(limit int) ([]*objects.Broadcast, error) {
	log.Printf("[REPOSITORY] Listing up to %d broadcasts", limit)

	rows, err := repo.db.Query(
		`SELECT id, title, body, kind, media_file_id, audience_tag, is_template, sent_count, created_at
		FROM broadcasts
		WHERE is_template = FALSE
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		log.Printf("[REPOSITORY] Error listing broadcasts: %v", err)
		return nil, err
	}
	defer rows.Close()

	return scanBroadcasts(rows)
}

// ListTemplates returns saved templates, newest first
func (repo *Repository) ListTemplates() ([]*objects.Broadcast, error) {
	log.Println("[REPOSITORY] Listing templates")

	rows, err := repo.db.Query(
		`SELECT id, title, body, kind, media_file_id, audience_tag, is_template, sent_count, created_at
		FROM broadcasts
		WHERE is_template = TRUE
		ORDER BY created_at DESC`,
	)
	if err != nil {
		log.Printf("[REPOSITORY] Error listing templates: %v", err)
		return nil, err
	}
	defer rows.Close()

	return scanBroadcasts(rows)
}

func scanBroadcasts(rows *sql.Rows) ([]*objects.Broadcast, error) {
	var broadcasts []*objects.Broadcast
	for rows.Next() {
		b := &objects.Broadcast{}
		err := rows.Scan(&b.ID, &b.Title, &b.Body, &b.Kind, &b.MediaFileID,
			&b.AudienceTag, &b.IsTemplate, &b.SentCount, &b.CreatedAt)
		if err != nil {
			log.Printf("[REPOSITORY] Error scanning broadcast row: %v", err)
			continue
		}
		broadcasts = append(broadcasts, b)
	}

	log.Printf("[REPOSITORY] Found %d broadcasts", len(broadcasts))
	return broadcasts, nil
}

// SetTemplateFlag toggles the template status of a broadcast.
// Deleting a template just clears the flag; the row and its history stay.
func (repo *Repository) SetTemplateFlag(id int64, isTemplate bool) error {
	log.Printf("[REPOSITORY] Setting template flag for broadcast %d: %t", id, isTemplate)

	_, err := repo.db.Exec(
		`UPDATE broadcasts SET is_template = $2 WHERE id = $1`,
		id, isTemplate,
	)

	if err != nil {
		log.Printf("[REPOSITORY] Error setting template flag: %v", err)
		return err
	}

	return nil
}

// AppendDeliveryRecord writes one per-recipient dispatch outcome.
// Records are append-only; nothing ever updates them.
func (repo *Repository) AppendDeliveryRecord(broadcastId, userId int64, status string) error {
	log.Printf("[REPOSITORY] Appending delivery record: broadcast=%d, user=%d, status=%s",
		broadcastId, userId, status)

	record := objects.NewDeliveryRecord(broadcastId, userId, status)
	_, err := repo.db.Exec(
		`INSERT INTO delivery_records (broadcast_id, user_id, status, created_at)
		VALUES ($1, $2, $3, $4)`,
		record.BroadcastID, record.UserID, record.Status, record.CreatedAt,
	)

	if err != nil {
		log.Printf("[REPOSITORY] Error appending delivery record: %v", err)
		return err
	}

	return nil
}

// SetBroadcastSentCount writes the cached success counter, once, after a run
func (repo *Repository) SetBroadcastSentCount(id int64, count int) error {
	log.Printf("[REPOSITORY] Setting sent count for broadcast %d: %d", id, count)

	_, err := repo.db.Exec(
		`UPDATE broadcasts SET sent_count = $2 WHERE id = $1`,
		id, count,
	)

	if err != nil {
		log.Printf("[REPOSITORY] Error setting sent count: %v", err)
		return err
	}

	return nil
}

// SaveDraft upserts the compose draft for an admin
func (repo *Repository) SaveDraft(d *objects.Draft) error {
	log.Printf("[REPOSITORY] Saving draft for admin %d", d.AdminID)

	d.UpdatedAt = time.Now().UTC()

	_, err := repo.db.Exec(
		`INSERT INTO broadcast_drafts (admin_id, title, body, kind, media_file_id, audience_tag, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (admin_id) DO UPDATE
			SET title = $2,
			    body = $3,
			    kind = $4,
			    media_file_id = $5,
			    audience_tag = $6,
			    updated_at = $7`,
		d.AdminID, d.Title, d.Body, d.Kind, d.MediaFileID, d.AudienceTag, d.UpdatedAt,
	)

	if err != nil {
		log.Printf("[REPOSITORY] Error saving draft for admin %d: %v", d.AdminID, err)
		return err
	}

	return nil
}

// FindDraft returns the admin's draft, or nil when missing or expired.
// An expired draft is deleted on the way out.
func (repo *Repository) FindDraft(adminId int64) (*objects.Draft, error) {
	log.Printf("[REPOSITORY] Finding draft for admin %d", adminId)

	d := &objects.Draft{}
	err := repo.db.QueryRow(
		`SELECT admin_id, title, body, kind, media_file_id, audience_tag, updated_at
		FROM broadcast_drafts
		WHERE admin_id = $1`,
		adminId,
	).Scan(&d.AdminID, &d.Title, &d.Body, &d.Kind, &d.MediaFileID, &d.AudienceTag, &d.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("[REPOSITORY] No draft for admin %d", adminId)
			return nil, nil
		}
		log.Printf("[REPOSITORY] Error finding draft for admin %d: %v", adminId, err)
		return nil, err
	}

	if d.Expired() {
		log.Printf("[REPOSITORY] Draft for admin %d expired, discarding", adminId)
		if err := repo.DeleteDraft(adminId); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return d, nil
}

// DeleteDraft removes the admin's draft (cancel or after send)
func (repo *Repository) DeleteDraft(adminId int64) error {
	log.Printf("[REPOSITORY] Deleting draft for admin %d", adminId)

	_, err := repo.db.Exec(
		`DELETE FROM broadcast_drafts WHERE admin_id = $1`,
		adminId,
	)

	if err != nil {
		log.Printf("[REPOSITORY] Error deleting draft for admin %d: %v", adminId, err)
		return err
	}

	return nil
}
