// Package sqlite is the file-backed store driver used for local and
// single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS owners (
    owner_id      TEXT PRIMARY KEY,
    creation_time TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS timelines (
    owner_id      TEXT NOT NULL,
    name          TEXT NOT NULL,
    allow_overlap INTEGER NOT NULL DEFAULT 1,
    creation_time TIMESTAMP NOT NULL,
    PRIMARY KEY (owner_id, name)
);
CREATE TABLE IF NOT EXISTS dots (
    dot_id   TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    timeline TEXT NOT NULL,
    name     TEXT NOT NULL,
    at_time  TIMESTAMP NOT NULL,
    note     TEXT
);
CREATE INDEX IF NOT EXISTS idx_dots_owner_time ON dots (owner_id, at_time);
CREATE TABLE IF NOT EXISTS dashes (
    dash_id    TEXT PRIMARY KEY,
    owner_id   TEXT NOT NULL,
    timeline   TEXT NOT NULL,
    name       TEXT NOT NULL,
    start_time TIMESTAMP NOT NULL,
    end_time   TIMESTAMP NOT NULL,
    note       TEXT
);
CREATE INDEX IF NOT EXISTS idx_dashes_window ON dashes (owner_id, timeline, name, end_time);
CREATE TABLE IF NOT EXISTS pendings (
    pending_id TEXT PRIMARY KEY,
    owner_id   TEXT NOT NULL,
    timeline   TEXT NOT NULL,
    name       TEXT NOT NULL,
    start_time TIMESTAMP NOT NULL,
    note       TEXT,
    UNIQUE (owner_id, timeline, name)
);
`

// Open opens (or creates) a SQLite database at the given path, enables WAL
// journal mode and applies the schema.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, mapErr(err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, mapErr(err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, mapErr(err)
	}
	return db, nil
}

// New opens the database file and returns a store backed by it.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, mapErr(err)
	}
	return NewWithDB(db), nil
}

// NewWithDB constructs a SQLite store over an existing connection.
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Owners() store.Owners       { return &owners{db: s.db} }
func (s *sqliteStore) Timelines() store.Timelines { return &timelines{db: s.db} }
func (s *sqliteStore) Dots() store.Dots           { return &dots{db: s.db} }
func (s *sqliteStore) Dashes() store.Dashes       { return &dashes{db: s.db} }
func (s *sqliteStore) Pendings() store.Pendings   { return &pendings{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return model.ErrNotFound
	case isUnavailable(err):
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return err
}

// isUnavailable reports whether err means the database itself cannot be
// reached, as opposed to a statement that failed.
func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}

// likePattern escapes LIKE metacharacters so the name filter matches the
// literal substring, case-insensitively.
func likePattern(name string) string {
	esc := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(name))
	return "%" + esc + "%"
}

// --- Owners ---

type owners struct{ db *sql.DB }

func (o *owners) Create(ctx context.Context) (*model.Owner, error) {
	own := &model.Owner{OwnerID: uuid.New().String(), CreationTime: model.Now()}
	_, err := o.db.ExecContext(ctx, `INSERT INTO owners (owner_id, creation_time) VALUES (?,?)`,
		own.OwnerID, own.CreationTime)
	if err != nil {
		return nil, mapErr(err)
	}
	return own, nil
}

func (o *owners) Get(ctx context.Context, ownerID string) (*model.Owner, error) {
	var out model.Owner
	row := o.db.QueryRowContext(ctx, `SELECT owner_id, creation_time FROM owners WHERE owner_id=?`, ownerID)
	if err := row.Scan(&out.OwnerID, &out.CreationTime); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

// --- Timelines ---

type timelines struct{ db *sql.DB }

func (t *timelines) Ensure(ctx context.Context, ownerID, name string) (*model.Timeline, error) {
	_, err := t.db.ExecContext(ctx, `
        INSERT INTO timelines (owner_id, name, allow_overlap, creation_time)
        VALUES (?,?,1,?) ON CONFLICT (owner_id, name) DO NOTHING
    `, ownerID, name, model.Now())
	if err != nil {
		return nil, mapErr(err)
	}
	return t.Get(ctx, ownerID, name)
}

func (t *timelines) Create(ctx context.Context, in *model.Timeline) (*model.Timeline, error) {
	out := *in
	out.CreationTime = model.Now()
	_, err := t.db.ExecContext(ctx, `
        INSERT INTO timelines (owner_id, name, allow_overlap, creation_time)
        VALUES (?,?,?,?)
        ON CONFLICT (owner_id, name) DO UPDATE SET allow_overlap=excluded.allow_overlap
    `, out.OwnerID, out.Name, out.AllowOverlap, out.CreationTime)
	if err != nil {
		return nil, mapErr(err)
	}
	return t.Get(ctx, out.OwnerID, out.Name)
}

func (t *timelines) Get(ctx context.Context, ownerID, name string) (*model.Timeline, error) {
	var out model.Timeline
	row := t.db.QueryRowContext(ctx, `
        SELECT owner_id, name, allow_overlap, creation_time FROM timelines WHERE owner_id=? AND name=?
    `, ownerID, name)
	if err := row.Scan(&out.OwnerID, &out.Name, &out.AllowOverlap, &out.CreationTime); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (t *timelines) List(ctx context.Context, ownerID string) ([]*model.Timeline, error) {
	rows, err := t.db.QueryContext(ctx, `
        SELECT owner_id, name, allow_overlap, creation_time FROM timelines WHERE owner_id=? ORDER BY name
    `, ownerID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Timeline
	for rows.Next() {
		var tl model.Timeline
		if err := rows.Scan(&tl.OwnerID, &tl.Name, &tl.AllowOverlap, &tl.CreationTime); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, &tl)
	}
	return out, mapErr(rows.Err())
}

// --- Dots ---

type dots struct{ db *sql.DB }

func (d *dots) Create(ctx context.Context, in *model.Dot) (*model.Dot, error) {
	out := *in
	if out.DotID == "" {
		out.DotID = uuid.New().String()
	}
	_, err := d.db.ExecContext(ctx, `
        INSERT INTO dots (dot_id, owner_id, timeline, name, at_time, note) VALUES (?,?,?,?,?,?)
    `, out.DotID, out.OwnerID, out.Timeline, out.Name, out.Time, out.Note)
	if err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (d *dots) Get(ctx context.Context, ownerID, dotID string) (*model.Dot, error) {
	var out model.Dot
	row := d.db.QueryRowContext(ctx, `
        SELECT dot_id, owner_id, timeline, name, at_time, note FROM dots WHERE owner_id=? AND dot_id=?
    `, ownerID, dotID)
	if err := row.Scan(&out.DotID, &out.OwnerID, &out.Timeline, &out.Name, &out.Time, &out.Note); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (d *dots) Update(ctx context.Context, in *model.Dot) (*model.Dot, error) {
	res, err := d.db.ExecContext(ctx, `
        UPDATE dots SET timeline=?, name=?, at_time=?, note=? WHERE owner_id=? AND dot_id=?
    `, in.Timeline, in.Name, in.Time, in.Note, in.OwnerID, in.DotID)
	if err != nil {
		return nil, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return d.Get(ctx, in.OwnerID, in.DotID)
}

func (d *dots) Delete(ctx context.Context, ownerID, dotID string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM dots WHERE owner_id=? AND dot_id=?`, ownerID, dotID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (d *dots) Search(ctx context.Context, req model.SearchRequest) ([]*model.Dot, error) {
	query := `SELECT dot_id, owner_id, timeline, name, at_time, note FROM dots WHERE owner_id=?`
	args := []interface{}{req.OwnerID}
	if req.Timeline != "" {
		query += ` AND timeline=?`
		args = append(args, req.Timeline)
	}
	if req.Name != "" {
		query += ` AND LOWER(name) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(req.Name))
	}
	// Limit keeps the most recent N; rows come back newest-first and are
	// reversed below so callers always see ascending time.
	query += ` ORDER BY at_time DESC, dot_id DESC`
	if req.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, req.Limit)
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Dot
	for rows.Next() {
		var dot model.Dot
		if err := rows.Scan(&dot.DotID, &dot.OwnerID, &dot.Timeline, &dot.Name, &dot.Time, &dot.Note); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, &dot)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	reverse(out)
	return out, nil
}

// --- Dashes ---

type dashes struct{ db *sql.DB }

const dashCols = `dash_id, owner_id, timeline, name, start_time, end_time, note`

func scanDashes(rows *sql.Rows) ([]*model.Dash, error) {
	defer func() { _ = rows.Close() }()
	var out []*model.Dash
	for rows.Next() {
		var dash model.Dash
		if err := rows.Scan(&dash.DashID, &dash.OwnerID, &dash.Timeline, &dash.Name, &dash.Start, &dash.End, &dash.Note); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, &dash)
	}
	return out, mapErr(rows.Err())
}

func (d *dashes) FindOverlapping(ctx context.Context, ownerID, timeline, name string, start, end time.Time) ([]*model.Dash, error) {
	rows, err := d.db.QueryContext(ctx, `
        SELECT `+dashCols+` FROM dashes
        WHERE owner_id=? AND timeline=? AND name=?
          AND NOT (start_time > ? OR end_time < ?)
        ORDER BY end_time, start_time, dash_id
    `, ownerID, timeline, name, end, start)
	if err != nil {
		return nil, mapErr(err)
	}
	return scanDashes(rows)
}

func (d *dashes) FindConflicting(ctx context.Context, ownerID, timeline, excludeName string, start, end time.Time) ([]*model.Dash, error) {
	rows, err := d.db.QueryContext(ctx, `
        SELECT `+dashCols+` FROM dashes
        WHERE owner_id=? AND timeline=? AND name<>?
          AND NOT (start_time > ? OR end_time < ?)
        ORDER BY end_time, start_time, dash_id
    `, ownerID, timeline, excludeName, end, start)
	if err != nil {
		return nil, mapErr(err)
	}
	return scanDashes(rows)
}

func (d *dashes) Apply(ctx context.Context, ownerID string, puts []*model.Dash, removeIDs []string) error {
	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return mapErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range removeIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM dashes WHERE owner_id=? AND dash_id=?`, ownerID, id); err != nil {
			return mapErr(err)
		}
	}
	for _, p := range puts {
		id := p.DashID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx, `
            INSERT INTO dashes (dash_id, owner_id, timeline, name, start_time, end_time, note)
            VALUES (?,?,?,?,?,?,?)
            ON CONFLICT (dash_id) DO UPDATE SET
                timeline=excluded.timeline, name=excluded.name,
                start_time=excluded.start_time, end_time=excluded.end_time, note=excluded.note
        `, id, ownerID, p.Timeline, p.Name, p.Start, p.End, p.Note)
		if err != nil {
			return mapErr(err)
		}
		p.DashID = id
	}
	return mapErr(tx.Commit())
}

func (d *dashes) Get(ctx context.Context, ownerID, dashID string) (*model.Dash, error) {
	var out model.Dash
	row := d.db.QueryRowContext(ctx, `
        SELECT `+dashCols+` FROM dashes WHERE owner_id=? AND dash_id=?
    `, ownerID, dashID)
	if err := row.Scan(&out.DashID, &out.OwnerID, &out.Timeline, &out.Name, &out.Start, &out.End, &out.Note); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (d *dashes) Delete(ctx context.Context, ownerID, dashID string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM dashes WHERE owner_id=? AND dash_id=?`, ownerID, dashID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (d *dashes) Search(ctx context.Context, req model.SearchRequest) ([]*model.Dash, error) {
	query := `SELECT ` + dashCols + ` FROM dashes WHERE owner_id=?`
	args := []interface{}{req.OwnerID}
	if req.Timeline != "" {
		query += ` AND timeline=?`
		args = append(args, req.Timeline)
	}
	if req.Name != "" {
		query += ` AND LOWER(name) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(req.Name))
	}
	query += ` ORDER BY end_time DESC, start_time DESC, dash_id DESC`
	if req.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, req.Limit)
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	out, err := scanDashes(rows)
	if err != nil {
		return nil, mapErr(err)
	}
	reverse(out)
	return out, nil
}

// --- Pendings ---

type pendings struct{ db *sql.DB }

func (p *pendings) Create(ctx context.Context, in *model.Pending) (*model.Pending, error) {
	out := *in
	if out.PendingID == "" {
		out.PendingID = uuid.New().String()
	}
	_, err := p.db.ExecContext(ctx, `
        INSERT INTO pendings (pending_id, owner_id, timeline, name, start_time, note) VALUES (?,?,?,?,?,?)
    `, out.PendingID, out.OwnerID, out.Timeline, out.Name, out.Start, out.Note)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, model.ErrAlreadyPending
		}
		return nil, mapErr(err)
	}
	return &out, nil
}

func (p *pendings) FindOne(ctx context.Context, ownerID, timeline, name string) (*model.Pending, error) {
	var out model.Pending
	row := p.db.QueryRowContext(ctx, `
        SELECT pending_id, owner_id, timeline, name, start_time, note
        FROM pendings WHERE owner_id=? AND timeline=? AND name=?
    `, ownerID, timeline, name)
	if err := row.Scan(&out.PendingID, &out.OwnerID, &out.Timeline, &out.Name, &out.Start, &out.Note); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (p *pendings) Delete(ctx context.Context, ownerID, pendingID string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM pendings WHERE owner_id=? AND pending_id=?`, ownerID, pendingID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (p *pendings) Search(ctx context.Context, req model.SearchRequest) ([]*model.Pending, error) {
	query := `SELECT pending_id, owner_id, timeline, name, start_time, note FROM pendings WHERE owner_id=?`
	args := []interface{}{req.OwnerID}
	if req.Timeline != "" {
		query += ` AND timeline=?`
		args = append(args, req.Timeline)
	}
	if req.Name != "" {
		query += ` AND LOWER(name) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(req.Name))
	}
	query += ` ORDER BY start_time DESC, pending_id DESC`
	if req.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, req.Limit)
	}
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Pending
	for rows.Next() {
		var pen model.Pending
		if err := rows.Scan(&pen.PendingID, &pen.OwnerID, &pen.Timeline, &pen.Name, &pen.Start, &pen.Note); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, &pen)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	reverse(out)
	return out, nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
