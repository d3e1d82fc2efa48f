package repository

import (
	"log"
	"mailcast/objects"
)

// ResolveAudience resolves an audience tag into a concrete recipient set,
// ordered by join date so dispatch order is deterministic for a given
// database state. Windows are relative to "now", so two calls moments apart
// may legitimately differ.
//
// Unknown tags resolve to an empty set, not an error: the admin keyboard only
// offers recognized tags, and an empty audience surfaces as a 0/0 dispatch
// result the operator can see immediately.
func (repo *Repository) ResolveAudience(tag string) ([]*objects.User, error) {
	log.Printf("[REPOSITORY] Resolving audience for tag: %s", tag)

	var where string
	switch tag {
	case objects.AudienceAll:
		where = `TRUE`
	case objects.AudienceActiveWeek:
		where = `EXISTS (
			SELECT 1 FROM activity_events e
			WHERE e.user_id = u."userId"
			AND e.created_at >= NOW() - INTERVAL '7 days'
		)`
	case objects.AudienceNewToday:
		where = `u."joinedAt" >= NOW() - INTERVAL '1 day'`
	case objects.AudienceNewWeek:
		where = `u."joinedAt" >= NOW() - INTERVAL '7 days'`
	default:
		log.Printf("[REPOSITORY] Unknown audience tag '%s', resolving to empty set", tag)
		return []*objects.User{}, nil
	}

	rows, err := repo.db.Query(
		`SELECT u."userId", u."menuId", u."username", u."firstName", u."lastName", u."joinedAt", u."lastActivityAt"
		FROM users u
		WHERE ` + where + `
		ORDER BY u."joinedAt" ASC`,
	)
	if err != nil {
		log.Printf("[REPOSITORY] Error resolving audience '%s': %v", tag, err)
		return nil, err
	}
	defer rows.Close()

	var users []*objects.User
	for rows.Next() {
		user := &objects.User{}
		err := rows.Scan(&user.UserId, &user.MenuId, &user.Username, &user.FirstName,
			&user.LastName, &user.JoinedAt, &user.LastActivityAt)
		if err != nil {
			log.Printf("[REPOSITORY] Error scanning audience row: %v", err)
			continue
		}
		users = append(users, user)
	}

	log.Printf("[REPOSITORY] Audience '%s' resolved to %d users", tag, len(users))
	return users, nil
}

// CountAudience returns the current size of an audience without materializing it
func (repo *Repository) CountAudience(tag string) (int, error) {
	log.Printf("[REPOSITORY] Counting audience for tag: %s", tag)

	var where string
	switch tag {
	case objects.AudienceAll:
		where = `TRUE`
	case objects.AudienceActiveWeek:
		where = `EXISTS (
			SELECT 1 FROM activity_events e
			WHERE e.user_id = u."userId"
			AND e.created_at >= NOW() - INTERVAL '7 days'
		)`
	case objects.AudienceNewToday:
		where = `u."joinedAt" >= NOW() - INTERVAL '1 day'`
	case objects.AudienceNewWeek:
		where = `u."joinedAt" >= NOW() - INTERVAL '7 days'`
	default:
		return 0, nil
	}

	var count int
	err := repo.db.QueryRow(`SELECT COUNT(*) FROM users u WHERE ` + where).Scan(&count)
	if err != nil {
		log.Printf("[REPOSITORY] Error counting audience '%s': %v", tag, err)
		return 0, err
	}

	log.Printf("[REPOSITORY] Audience '%s' has %d users", tag, count)
	return count, nil
}
