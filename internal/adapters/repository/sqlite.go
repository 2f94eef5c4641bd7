package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/curator/internal/domain/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS likes (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	tx_id      TEXT NOT NULL UNIQUE,
	project_id TEXT NOT NULL,
	item_id    TEXT NOT NULL,
	sender     TEXT NOT NULL,
	timestamp  INTEGER NOT NULL,
	action     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_likes_project ON likes(project_id);
`

type projectRow struct {
	ID        string `db:"id"`
	Body      string `db:"body"`
	UpdatedAt int64  `db:"updated_at"`
}

type likeRow struct {
	Seq       int64  `db:"seq"`
	TxID      string `db:"tx_id"`
	ProjectID string `db:"project_id"`
	ItemID    string `db:"item_id"`
	Sender    string `db:"sender"`
	Timestamp int64  `db:"timestamp"`
	Action    string `db:"action"`
}

var _ Archive = (*SQLiteArchive)(nil)

// SQLiteArchive stores each project as a JSON document plus an append-only
// log of likes received after the project was saved.
type SQLiteArchive struct {
	db *sqlx.DB
}

// OpenSQLiteArchive opens (or creates) the database at path and applies the schema.
func OpenSQLiteArchive(ctx context.Context, path string) (*SQLiteArchive, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer at a time; this also keeps ":memory:" databases on a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteArchive{db: db}, nil
}

// Close closes the database.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

const upsertProject = `
INSERT INTO projects (id, body, updated_at) VALUES (:id, :body, :updated_at)
ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`

func newProjectRow(id string, p *model.Project) (projectRow, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return projectRow{}, fmt.Errorf("encode project %s: %w", id, err)
	}
	return projectRow{ID: id, Body: string(body), UpdatedAt: time.Now().Unix()}, nil
}

// SaveForest replaces the archived forest and clears the like log.
func (a *SQLiteArchive) SaveForest(ctx context.Context, forest model.Forest) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM likes"); err != nil {
		return fmt.Errorf("clear likes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM projects"); err != nil {
		return fmt.Errorf("clear projects: %w", err)
	}

	ids := make([]string, 0, len(forest))
	for id, p := range forest {
		if p != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		row, err := newProjectRow(id, forest[id])
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, upsertProject, row); err != nil {
			return fmt.Errorf("insert project %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// SaveProject upserts one project and drops the logged likes of its items,
// whose histories are now part of the saved document.
func (a *SQLiteArchive) SaveProject(ctx context.Context, p *model.Project) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("%w: project without id", ErrInvalidForest)
	}
	row, err := newProjectRow(p.ID, p)
	if err != nil {
		return err
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, upsertProject, row); err != nil {
		return fmt.Errorf("upsert project %s: %w", p.ID, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM likes WHERE project_id = ?", p.ID); err != nil {
		return fmt.Errorf("clear likes of %s: %w", p.ID, err)
	}
	return tx.Commit()
}

// RecordLike appends a like to the log. Returns false if the tx id is already logged.
// The tx id is the log key and must be set.
func (a *SQLiteArchive) RecordLike(ctx context.Context, sub model.LikeSubmission) (bool, error) {
	txID := sub.Event.TxID
	if txID == "" {
		return false, fmt.Errorf("record like on %s: %w: missing tx id", sub.ItemID, ErrInvalidLike)
	}
	res, err := a.db.ExecContext(ctx, `
		INSERT INTO likes (tx_id, project_id, item_id, sender, timestamp, action)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(tx_id) DO NOTHING`,
		txID, model.ProjectOf(sub.ItemID), sub.ItemID, sub.Event.Sender, sub.Event.Timestamp, string(sub.Event.Action))
	if err != nil {
		return false, fmt.Errorf("record like %s: %w", txID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record like %s: %w", txID, err)
	}
	return n == 1, nil
}

// LoadForest rebuilds the forest from the saved projects and the like log.
// Logged likes for items that no longer exist are skipped.
func (a *SQLiteArchive) LoadForest(ctx context.Context) (model.Forest, error) {
	var projects []projectRow
	if err := a.db.SelectContext(ctx, &projects, "SELECT id, body, updated_at FROM projects ORDER BY id"); err != nil {
		return nil, fmt.Errorf("select projects: %w", err)
	}

	forest := make(model.Forest, len(projects))
	for _, row := range projects {
		var p model.Project
		if err := json.Unmarshal([]byte(row.Body), &p); err != nil {
			return nil, fmt.Errorf("decode project %s: %w", row.ID, err)
		}
		forest[row.ID] = &p
	}

	var likes []likeRow
	if err := a.db.SelectContext(ctx, &likes, "SELECT * FROM likes ORDER BY seq"); err != nil {
		return nil, fmt.Errorf("select likes: %w", err)
	}
	for _, l := range likes {
		forest.AppendLike(l.ItemID, model.LikeEvent{
			Sender:    l.Sender,
			Timestamp: l.Timestamp,
			Action:    model.Action(l.Action),
			TxID:      l.TxID,
		})
	}
	return forest, nil
}
