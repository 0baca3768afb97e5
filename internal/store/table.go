package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"jobboard-engine/internal/domain"
)

// sqlite's datetime() format, so retention queries compare like for like
const stampLayout = "2006-01-02 15:04:05"

type ListJobsOpts struct {
	Source string // online | newspaper | "" for all
	Limit  int    // <= 0 means no limit
}

func Migrate(db *sql.DB) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS jobs (
  id TEXT PRIMARY KEY,
  company TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL DEFAULT '',
  tier TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  featured INTEGER NOT NULL DEFAULT 0,
  posted_date TEXT NOT NULL DEFAULT '',
  published_date TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  url TEXT NOT NULL DEFAULT '',
  received_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS news (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  link TEXT NOT NULL DEFAULT '',
  type TEXT NOT NULL DEFAULT '',
  is_pinned INTEGER NOT NULL DEFAULT 0,
  updated_at TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL DEFAULT '',
  summary TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  received_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	// ---- Schema v1: indexes ----

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_jobs_received_at
ON jobs(received_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_news_created_at
ON news(created_at DESC);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

// recordID gives records from sources without ids a stable one.
func recordID(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h[:16])
}

// UpsertJobs inserts new jobs and updates changed ones. It returns how many
// rows actually changed.
func UpsertJobs(ctx context.Context, db *sql.DB, jobs []domain.Job) (changed int, err error) {
	if len(jobs) == 0 {
		return 0, nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO jobs(id, company, title, tier, source, featured, posted_date, published_date, location, url, received_at)
VALUES(?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
  company = excluded.company,
  title = excluded.title,
  tier = excluded.tier,
  source = excluded.source,
  featured = excluded.featured,
  posted_date = excluded.posted_date,
  published_date = excluded.published_date,
  location = excluded.location,
  url = excluded.url
WHERE jobs.company IS NOT excluded.company
   OR jobs.title IS NOT excluded.title
   OR jobs.tier IS NOT excluded.tier
   OR jobs.source IS NOT excluded.source
   OR jobs.featured IS NOT excluded.featured
   OR jobs.posted_date IS NOT excluded.posted_date
   OR jobs.published_date IS NOT excluded.published_date
   OR jobs.location IS NOT excluded.location
   OR jobs.url IS NOT excluded.url;`)
	if err != nil {
		return 0, fmt.Errorf("prepare job upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(stampLayout)
	for _, j := range jobs {
		if j.ID == "" {
			j.ID = recordID("job", j.Company, j.Title, j.URL, j.PublishedDate)
		}
		res, err := stmt.ExecContext(ctx,
			j.ID, j.Company, j.Title, j.Tier, j.Source, j.Featured,
			j.PostedDate, j.PublishedDate, j.Location, j.URL, now,
		)
		if err != nil {
			return 0, fmt.Errorf("upsert job %s: %w", j.ID, err)
		}
		n, _ := res.RowsAffected()
		changed += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return changed, nil
}

func ListJobs(ctx context.Context, db *sql.DB, opts ListJobsOpts) ([]domain.Job, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}

	where := ""
	args := []any{}
	if opts.Source != "" {
		where = "WHERE source = ?"
		args = append(args, opts.Source)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
SELECT id, company, title, tier, source, featured, posted_date, published_date, location, url
FROM jobs
%s
ORDER BY received_at DESC, id
LIMIT ?;
`, where)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Job{}
	for rows.Next() {
		var j domain.Job
		if err := rows.Scan(
			&j.ID,
			&j.Company,
			&j.Title,
			&j.Tier,
			&j.Source,
			&j.Featured,
			&j.PostedDate,
			&j.PublishedDate,
			&j.Location,
			&j.URL,
		); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteJob reports whether a row was removed.
func DeleteJob(ctx context.Context, db *sql.DB, id string) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?;`, id)
	if err != nil {
		return false, fmt.Errorf("delete job %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// CleanupOldJobs removes jobs first received more than days ago. days <= 0
// keeps everything.
func CleanupOldJobs(ctx context.Context, db *sql.DB, days int) (deleted int64, err error) {
	if days <= 0 {
		return 0, nil
	}
	res, err := db.ExecContext(ctx, `
DELETE FROM jobs
WHERE received_at < datetime('now', ?);
`, fmt.Sprintf("-%d days", days))
	if err != nil {
		return 0, fmt.Errorf("cleanup old jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// UpsertNews mirrors UpsertJobs for announcements.
func UpsertNews(ctx context.Context, db *sql.DB, items []domain.NewsItem) (changed int, err error) {
	if len(items) == 0 {
		return 0, nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO news(id, title, link, type, is_pinned, updated_at, created_at, summary, source, received_at)
VALUES(?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
  title = excluded.title,
  link = excluded.link,
  type = excluded.type,
  is_pinned = excluded.is_pinned,
  updated_at = excluded.updated_at,
  created_at = excluded.created_at,
  summary = excluded.summary,
  source = excluded.source
WHERE news.title IS NOT excluded.title
   OR news.link IS NOT excluded.link
   OR news.type IS NOT excluded.type
   OR news.is_pinned IS NOT excluded.is_pinned
   OR news.updated_at IS NOT excluded.updated_at
   OR news.created_at IS NOT excluded.created_at
   OR news.summary IS NOT excluded.summary
   OR news.source IS NOT excluded.source;`)
	if err != nil {
		return 0, fmt.Errorf("prepare news upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(stampLayout)
	for _, n := range items {
		if n.ID == "" {
			n.ID = recordID("news", n.Link, n.Title)
		}
		res, err := stmt.ExecContext(ctx,
			n.ID, n.Title, n.Link, n.Type, n.IsPinned, n.UpdatedAt, n.CreatedAt, n.Summary, n.Source, now,
		)
		if err != nil {
			return 0, fmt.Errorf("upsert news %s: %w", n.ID, err)
		}
		c, _ := res.RowsAffected()
		changed += int(c)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return changed, nil
}

// ListNews returns announcements newest first by created_at; deduplication
// keeps this order within the pinned and unpinned groups.
func ListNews(ctx context.Context, db *sql.DB, limit int) ([]domain.NewsItem, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, title, link, type, is_pinned, updated_at, created_at, summary, source
FROM news
ORDER BY created_at DESC, received_at DESC, id
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.NewsItem{}
	for rows.Next() {
		var n domain.NewsItem
		if err := rows.Scan(&n.ID, &n.Title, &n.Link, &n.Type, &n.IsPinned, &n.UpdatedAt, &n.CreatedAt, &n.Summary, &n.Source); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
