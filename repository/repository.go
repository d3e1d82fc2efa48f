package repository

import (
	"database/sql"
	"log"
	"mailcast/objects"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	log.Println("[REPOSITORY] Repository initialized")
	return &Repository{db: db}
}

// InitSchema installs the tables on startup. Everything is IF NOT EXISTS so
// repeated starts are harmless.
func (repo *Repository) InitSchema() error {
	log.Println("[REPOSITORY] Installing database schema")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			"userId" BIGINT PRIMARY KEY,
			"menuId" INT NOT NULL DEFAULT 100,
			"username" TEXT NOT NULL DEFAULT '',
			"firstName" TEXT NOT NULL DEFAULT '',
			"lastName" TEXT NOT NULL DEFAULT '',
			"joinedAt" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			"lastActivityAt" TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS activity_events (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			action TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS activity_events_user_id_idx
			ON activity_events (user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS broadcasts (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL DEFAULT 'text',
			media_file_id TEXT NOT NULL DEFAULT '',
			audience_tag TEXT NOT NULL DEFAULT 'all',
			is_template BOOLEAN NOT NULL DEFAULT FALSE,
			sent_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS delivery_records (
			id BIGSERIAL PRIMARY KEY,
			broadcast_id BIGINT NOT NULL REFERENCES broadcasts (id),
			user_id BIGINT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS delivery_records_broadcast_id_idx
			ON delivery_records (broadcast_id)`,
		`CREATE TABLE IF NOT EXISTS broadcast_drafts (
			admin_id BIGINT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL DEFAULT 'text',
			media_file_id TEXT NOT NULL DEFAULT '',
			audience_tag TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := repo.db.Exec(stmt); err != nil {
			log.Printf("[REPOSITORY] Error installing schema: %v", err)
			return err
		}
	}

	log.Println("[REPOSITORY] Database schema installed")
	return nil
}

func (repo *Repository) FindUser(userId int64) *objects.User {
	log.Printf("[REPOSITORY] Finding user with ID: %d", userId)
	user := &objects.User{}

	err := repo.db.QueryRow(
		`SELECT "userId", "menuId", "username", "firstName", "lastName", "joinedAt", "lastActivityAt"
		FROM users
		WHERE "userId" = $1
		LIMIT 1`,
		userId,
	).Scan(&user.UserId, &user.MenuId, &user.Username, &user.FirstName, &user.LastName,
		&user.JoinedAt, &user.LastActivityAt)

	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("[REPOSITORY] User %d not found", userId)
		} else {
			log.Printf("[REPOSITORY] Error finding user %d: %v", userId, err)
		}
		return nil
	}

	return user
}

// UpsertUser inserts the user if unseen and reports whether a row was created.
// Display fields are first-write-wins: repeat contacts never overwrite them.
func (repo *Repository) UpsertUser(user *objects.User) (bool, error) {
	log.Printf("[REPOSITORY] Upserting user %d (username: %s)", user.UserId, user.Username)

	result, err := repo.db.Exec(
		`INSERT INTO users ("userId", "menuId", "username", "firstName", "lastName", "joinedAt", "lastActivityAt")
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ("userId") DO NOTHING`,
		user.UserId, user.MenuId, user.Username, user.FirstName, user.LastName,
		user.JoinedAt, user.LastActivityAt,
	)

	if err != nil {
		log.Printf("[REPOSITORY] Error upserting user %d: %v", user.UserId, err)
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		log.Printf("[REPOSITORY] Error checking rows affected for user %d: %v", user.UserId, err)
		return false, err
	}

	inserted := rows > 0
	if inserted {
		log.Printf("[REPOSITORY] User %d created", user.UserId)
	} else {
		log.Printf("[REPOSITORY] User %d already known, keeping first-seen fields", user.UserId)
	}
	return inserted, nil
}

// SetUserMenu updates only the menu state of a user
func (repo *Repository) SetUserMenu(userId int64, menuId objects.MenuId) error {
	log.Printf("[REPOSITORY] Setting menu state for user %d: %d", userId, menuId)

	_, err := repo.db.Exec(
		`UPDATE users SET "menuId" = $2 WHERE "userId" = $1`,
		userId, menuId,
	)

	if err != nil {
		log.Printf("[REPOSITORY] Error setting menu state for user %d: %v", userId, err)
		return err
	}

	return nil
}

// RecordActivity appends an activity event and refreshes the user's
// last-activity timestamp. An unknown user is a best-effort no-op for the
// event consumer: the event row is still written, only the user refresh
// silently touches zero rows.
func (repo *Repository) RecordActivity(userId int64, action string) error {
	log.Printf("[REPOSITORY] Recording activity for user %d: %s", userId, action)

	event := objects.ActivityEvent{UserID: userId, Action: action, CreatedAt: time.Now().UTC()}
	_, err := repo.db.Exec(
		`INSERT INTO activity_events (user_id, action, created_at)
		VALUES ($1, $2, $3)`,
		event.UserID, event.Action, event.CreatedAt,
	)
	if err != nil {
		log.Printf("[REPOSITORY] Error recording activity for user %d: %v", userId, err)
		return err
	}

	_, err = repo.db.Exec(
		`UPDATE users SET "lastActivityAt" = NOW() WHERE "userId" = $1`,
		userId,
	)
	if err != nil {
		log.Printf("[REPOSITORY] Error refreshing last activity for user %d: %v", userId, err)
		return err
	}

	return nil
}

// GetAllUsers returns the full roster ordered by join date (newest first)
func (repo *Repository) GetAllUsers() ([]*objects.User, error) {
	log.Println("[REPOSITORY] Getting all users")

	rows, err := repo.db.Query(
		`SELECT "userId", "menuId", "username", "firstName", "lastName", "joinedAt", "lastActivityAt"
		FROM users
		ORDER BY "joinedAt" DESC`,
	)
	if err != nil {
		log.Printf("[REPOSITORY] Error getting all users: %v", err)
		return nil, err
	}
	defer rows.Close()

	var users []*objects.User
	for rows.Next() {
		user := &objects.User{}
		err := rows.Scan(&user.UserId, &user.MenuId, &user.Username, &user.FirstName,
			&user.LastName, &user.JoinedAt, &user.LastActivityAt)
		if err != nil {
			log.Printf("[REPOSITORY] Error scanning user row: %v", err)
			continue
		}
		users = append(users, user)
	}

	log.Printf("[REPOSITORY] Found %d users", len(users))
	return users, nil
}

// GetUserCount returns the total number of registered users
func (repo *Repository) GetUserCount() (int, error) {
	var count int
	err := repo.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		log.Printf("[REPOSITORY] Error counting users: %v", err)
		return 0, err
	}
	return count, nil
}
