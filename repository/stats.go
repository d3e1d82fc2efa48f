package repository

import (
	"database/sql"
	"log"
	"math"
	"time"
)

// DetailedStats is the aggregate snapshot shown on the statistics screens
// and in the report summary sheet.
type DetailedStats struct {
	TotalUsers           int
	NewUsersToday        int
	NewUsersWeek         int
	NewUsersMonth        int
	ActiveUsersToday     int
	ActiveUsersWeek      int
	TotalBroadcasts      int
	TotalSentMessages    int
	SuccessfulDeliveries int
	FailedDeliveries     int
	AvgActivityPerUser   float64 // mean events per active user, trailing 7 days
}

// DeliveryRate returns the overall delivery percentage, 0 when nothing was sent
func (s *DetailedStats) DeliveryRate() float64 {
	total := s.SuccessfulDeliveries + s.FailedDeliveries
	if total == 0 {
		return 0
	}
	return math.Round(float64(s.SuccessfulDeliveries)/float64(total)*100*100) / 100
}

// BroadcastPerformanceRow summarizes one broadcast's delivery outcome,
// computed from delivery records (the counter on the broadcast row is only a
// cached summary and is not consulted here).
type BroadcastPerformanceRow struct {
	ID             int64
	Title          string
	CreatedAt      time.Time
	SentCount      int     // total dispatch attempts
	DeliveredCount int     // attempts with status 'sent'
	DeliveryRate   float64 // delivered/sent*100, 2 decimals, 0 when sent=0
}

// UserSegments breaks the user base into overlapping behavioral segments.
// WithUsername + WithoutUsername always partition the whole set.
type UserSegments struct {
	NewUsers        int // joined within 7 days
	ActiveUsers     int // at least one activity event within 7 days
	InactiveUsers   int // zero activity events within 30 days
	WithUsername    int
	WithoutUsername int
}

// DayCount is one point of a per-day series
type DayCount struct {
	Day   time.Time
	Count int
}

// ActiveUserRow is one row of the activity leaderboard
type ActiveUserRow struct {
	UserID        int64
	Username      string
	FirstName     string
	ActivityCount int
}

// GetDetailedStats computes the aggregate snapshot in one round of queries
func (repo *Repository) GetDetailedStats() (*DetailedStats, error) {
	log.Println("[REPOSITORY] Computing detailed stats")

	stats := &DetailedStats{}

	err := repo.db.QueryRow(
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE "joinedAt" >= NOW() - INTERVAL '1 day'),
			COUNT(*) FILTER (WHERE "joinedAt" >= NOW() - INTERVAL '7 days'),
			COUNT(*) FILTER (WHERE "joinedAt" >= NOW() - INTERVAL '30 days')
		FROM users`,
	).Scan(&stats.TotalUsers, &stats.NewUsersToday, &stats.NewUsersWeek, &stats.NewUsersMonth)
	if err != nil {
		log.Printf("[REPOSITORY] Error computing user stats: %v", err)
		return nil, err
	}

	err = repo.db.QueryRow(
		`SELECT
			COUNT(DISTINCT user_id) FILTER (WHERE created_at >= NOW() - INTERVAL '1 day'),
			COUNT(DISTINCT user_id) FILTER (WHERE created_at >= NOW() - INTERVAL '7 days')
		FROM activity_events`,
	).Scan(&stats.ActiveUsersToday, &stats.ActiveUsersWeek)
	if err != nil {
		log.Printf("[REPOSITORY] Error computing activity stats: %v", err)
		return nil, err
	}

	err = repo.db.QueryRow(
		`SELECT
			COUNT(*) FILTER (WHERE is_template = FALSE),
			COALESCE(SUM(sent_count) FILTER (WHERE is_template = FALSE), 0)
		FROM broadcasts`,
	).Scan(&stats.TotalBroadcasts, &stats.TotalSentMessages)
	if err != nil {
		log.Printf("[REPOSITORY] Error computing broadcast stats: %v", err)
		return nil, err
	}

	err = repo.db.QueryRow(
		`SELECT
			COUNT(*) FILTER (WHERE status = 'sent'),
			COUNT(*) FILTER (WHERE status = 'failed')
		FROM delivery_records`,
	).Scan(&stats.SuccessfulDeliveries, &stats.FailedDeliveries)
	if err != nil {
		log.Printf("[REPOSITORY] Error computing delivery stats: %v", err)
		return nil, err
	}

	// Mean events per active user over the trailing week; 0 when nobody is active
	err = repo.db.QueryRow(
		`SELECT COALESCE(ROUND(AVG(cnt), 2), 0) FROM (
			SELECT COUNT(*) AS cnt
			FROM activity_events
			WHERE created_at >= NOW() - INTERVAL '7 days'
			GROUP BY user_id
		) per_user`,
	).Scan(&stats.AvgActivityPerUser)
	if err != nil {
		log.Printf("[REPOSITORY] Error computing average activity: %v", err)
		return nil, err
	}

	log.Printf("[REPOSITORY] Stats computed: %d users, %d broadcasts", stats.TotalUsers, stats.TotalBroadcasts)
	return stats, nil
}

// GetBroadcastPerformance returns per-broadcast delivery summaries, newest
// first. The rate is rounded to 2 decimals in SQL and is 0 (not an error)
// for broadcasts with no delivery records.
func (repo *Repository) GetBroadcastPerformance() ([]*BroadcastPerformanceRow, error) {
	log.Println("[REPOSITORY] Computing broadcast performance")

	rows, err := repo.db.Query(
		`SELECT b.id, b.title, b.created_at,
			COUNT(r.id) AS sent,
			COUNT(r.id) FILTER (WHERE r.status = 'sent') AS delivered,
			CASE WHEN COUNT(r.id) = 0 THEN 0
			     ELSE ROUND(COUNT(r.id) FILTER (WHERE r.status = 'sent')::numeric / COUNT(r.id) * 100, 2)
			END AS rate
		FROM broadcasts b
		LEFT JOIN delivery_records r ON r.broadcast_id = b.id
		WHERE b.is_template = FALSE
		GROUP BY b.id, b.title, b.created_at
		ORDER BY b.created_at DESC`,
	)
	if err != nil {
		log.Printf("[REPOSITORY] Error computing broadcast performance: %v", err)
		return nil, err
	}
	defer rows.Close()

	var result []*BroadcastPerformanceRow
	for rows.Next() {
		row := &BroadcastPerformanceRow{}
		err := rows.Scan(&row.ID, &row.Title, &row.CreatedAt,
			&row.SentCount, &row.DeliveredCount, &row.DeliveryRate)
		if err != nil {
			log.Printf("[REPOSITORY] Error scanning performance row: %v", err)
			continue
		}
		result = append(result, row)
	}

	log.Printf("[REPOSITORY] Performance computed for %d broadcasts", len(result))
	return result, nil
}

// GetUserSegments computes the segment breakdown
func (repo *Repository) GetUserSegments() (*UserSegments, error) {
	log.Println("[REPOSITORY] Computing user segments")

	segments := &UserSegments{}

	err := repo.db.QueryRow(
		`SELECT
			COUNT(*) FILTER (WHERE "joinedAt" >= NOW() - INTERVAL '7 days'),
			COUNT(*) FILTER (WHERE EXISTS (
				SELECT 1 FROM activity_events e
				WHERE e.user_id = u."userId"
				AND e.created_at >= NOW() - INTERVAL '7 days'
			)),
			COUNT(*) FILTER (WHERE NOT EXISTS (
				SELECT 1 FROM activity_events e
				WHERE e.user_id = u."userId"
				AND e.created_at >= NOW() - INTERVAL '30 days'
			)),
			COUNT(*) FILTER (WHERE "username" <> ''),
			COUNT(*) FILTER (WHERE "username" = '')
		FROM users u`,
	).Scan(&segments.NewUsers, &segments.ActiveUsers, &segments.InactiveUsers,
		&segments.WithUsername, &segments.WithoutUsername)

	if err != nil {
		log.Printf("[REPOSITORY] Error computing user segments: %v", err)
		return nil, err
	}

	return segments, nil
}

// GetUserGrowth returns new-user counts per day for the trailing window,
// oldest day first. Days without signups are omitted.
func (repo *Repository) GetUserGrowth(days int) ([]*DayCount, error) {
	log.Printf("[REPOSITORY] Computing user growth over %d days", days)

	rows, err := repo.db.Query(
		`SELECT DATE_TRUNC('day', "joinedAt") AS day, COUNT(*)
		FROM users
		WHERE "joinedAt" >= NOW() - make_interval(days => $1)
		GROUP BY day
		ORDER BY day ASC`,
		days,
	)
	if err != nil {
		log.Printf("[REPOSITORY] Error computing user growth: %v", err)
		return nil, err
	}
	defer rows.Close()

	return scanDayCounts(rows)
}

// GetDailyActivity returns activity-event counts per day, oldest day first
func (repo *Repository) GetDailyActivity(days int) ([]*DayCount, error) {
	log.Printf("[REPOSITORY] Computing daily activity over %d days", days)

	rows, err := repo.db.Query(
		`SELECT DATE_TRUNC('day', created_at) AS day, COUNT(*)
		FROM activity_events
		WHERE created_at >= NOW() - make_interval(days => $1)
		GROUP BY day
		ORDER BY day ASC`,
		days,
	)
	if err != nil {
		log.Printf("[REPOSITORY] Error computing daily activity: %v", err)
		return nil, err
	}
	defer rows.Close()

	return scanDayCounts(rows)
}

// GetTopActiveUsers returns the activity leaderboard
func (repo *Repository) GetTopActiveUsers(limit int) ([]*ActiveUserRow, error) {
	log.Printf("[REPOSITORY] Computing top %d active users", limit)

	rows, err := repo.db.Query(
		`SELECT u."userId", u."username", u."firstName", COUNT(e.id) AS cnt
		FROM users u
		JOIN activity_events e ON e.user_id = u."userId"
		GROUP BY u."userId", u."username", u."firstName"
		ORDER BY cnt DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		log.Printf("[REPOSITORY] Error computing top active users: %v", err)
		return nil, err
	}
	defer rows.Close()

	var result []*ActiveUserRow
	for rows.Next() {
		row := &ActiveUserRow{}
		if err := rows.Scan(&row.UserID, &row.Username, &row.FirstName, &row.ActivityCount); err != nil {
			log.Printf("[REPOSITORY] Error scanning leaderboard row: %v", err)
			continue
		}
		result = append(result, row)
	}

	return result, nil
}

func scanDayCounts(rows *sql.Rows) ([]*DayCount, error) {
	var result []*DayCount
	for rows.Next() {
		point := &DayCount{}
		if err := rows.Scan(&point.Day, &point.Count); err != nil {
			log.Printf("[REPOSITORY] Error scanning day count row: %v", err)
			continue
		}
		result = append(result, point)
	}
	return result, nil
}
