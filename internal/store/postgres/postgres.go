// Package postgres is the PostgreSQL store driver, via the pgx stdlib
// adapter over database/sql.
package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS owners (
    owner_id      TEXT PRIMARY KEY,
    creation_time TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS timelines (
    owner_id      TEXT NOT NULL,
    name          TEXT NOT NULL,
    allow_overlap BOOLEAN NOT NULL DEFAULT TRUE,
    creation_time TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (owner_id, name)
);
CREATE TABLE IF NOT EXISTS dots (
    dot_id   TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    timeline TEXT NOT NULL,
    name     TEXT NOT NULL,
    at_time  TIMESTAMPTZ NOT NULL,
    note     TEXT
);
CREATE INDEX IF NOT EXISTS idx_dots_owner_time ON dots (owner_id, at_time);
CREATE TABLE IF NOT EXISTS dashes (
    dash_id    TEXT PRIMARY KEY,
    owner_id   TEXT NOT NULL,
    timeline   TEXT NOT NULL,
    name       TEXT NOT NULL,
    start_time TIMESTAMPTZ NOT NULL,
    end_time   TIMESTAMPTZ NOT NULL,
    note       TEXT
);
CREATE INDEX IF NOT EXISTS idx_dashes_window ON dashes (owner_id, timeline, name, end_time);
CREATE TABLE IF NOT EXISTS pendings (
    pending_id TEXT PRIMARY KEY,
    owner_id   TEXT NOT NULL,
    timeline   TEXT NOT NULL,
    name       TEXT NOT NULL,
    start_time TIMESTAMPTZ NOT NULL,
    note       TEXT,
    UNIQUE (owner_id, timeline, name)
);
`

// Open opens a PostgreSQL connection using the pgx stdlib driver and
// verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, mapErr(err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return db, nil
}

// Bootstrap applies the schema over a short-lived connection and closes
// it. Deployments with their own migration tooling can skip this and
// call NewWithDB directly.
func Bootstrap(ctx context.Context, dsn string) error {
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return mapErr(err)
	}
	return nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Owners() store.Owners       { return &owners{db: s.db} }
func (s *pgStore) Timelines() store.Timelines { return &timelines{db: s.db} }
func (s *pgStore) Dots() store.Dots           { return &dots{db: s.db} }
func (s *pgStore) Dashes() store.Dashes       { return &dashes{db: s.db} }
func (s *pgStore) Pendings() store.Pendings   { return &pendings{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error {
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
// reached, as opposed to a statement that failed. Dropped connections
// surface as driver, pgconn or net errors depending on where the break
// is noticed.
func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func likePattern(name string) string {
	esc := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(name)
	return "%" + esc + "%"
}

// --- Owners ---

type owners struct{ db *sql.DB }

func (o *owners) Create(ctx context.Context) (*model.Owner, error) {
	own := &model.Owner{OwnerID: uuid.New().String(), CreationTime: model.Now()}
	_, err := o.db.ExecContext(ctx, `INSERT INTO owners (owner_id, creation_time) VALUES ($1,$2)`,
		own.OwnerID, own.CreationTime)
	if err != nil {
		return nil, mapErr(err)
	}
	return own, nil
}

func (o *owners) Get(ctx context.Context, ownerID string) (*model.Owner, error) {
	var out model.Owner
	row := o.db.QueryRowContext(ctx, `SELECT owner_id, creation_time FROM owners WHERE owner_id=$1`, ownerID)
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
        VALUES ($1,$2,TRUE,$3) ON CONFLICT (owner_id, name) DO NOTHING
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
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (owner_id, name) DO UPDATE SET allow_overlap=EXCLUDED.allow_overlap
    `, out.OwnerID, out.Name, out.AllowOverlap, out.CreationTime)
	if err != nil {
		return nil, mapErr(err)
	}
	return t.Get(ctx, out.OwnerID, out.Name)
}

func (t *timelines) Get(ctx context.Context, ownerID, name string) (*model.Timeline, error) {
	var out model.Timeline
	row := t.db.QueryRowContext(ctx, `
        SELECT owner_id, name, allow_overlap, creation_time FROM timelines WHERE owner_id=$1 AND name=$2
    `, ownerID, name)
	if err := row.Scan(&out.OwnerID, &out.Name, &out.AllowOverlap, &out.CreationTime); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (t *timelines) List(ctx context.Context, ownerID string) ([]*model.Timeline, error) {
	rows, err := t.db.QueryContext(ctx, `
        SELECT owner_id, name, allow_overlap, creation_time FROM timelines WHERE owner_id=$1 ORDER BY name
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
        INSERT INTO dots (dot_id, owner_id, timeline, name, at_time, note) VALUES ($1,$2,$3,$4,$5,$6)
    `, out.DotID, out.OwnerID, out.Timeline, out.Name, out.Time, out.Note)
	if err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (d *dots) Get(ctx context.Context, ownerID, dotID string) (*model.Dot, error) {
	var out model.Dot
	row := d.db.QueryRowContext(ctx, `
        SELECT dot_id, owner_id, timeline, name, at_time, note FROM dots WHERE owner_id=$1 AND dot_id=$2
    `, ownerID, dotID)
	if err := row.Scan(&out.DotID, &out.OwnerID, &out.Timeline, &out.Name, &out.Time, &out.Note); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (d *dots) Update(ctx context.Context, in *model.Dot) (*model.Dot, error) {
	res, err := d.db.ExecContext(ctx, `
        UPDATE dots SET timeline=$1, name=$2, at_time=$3, note=$4 WHERE owner_id=$5 AND dot_id=$6
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
	res, err := d.db.ExecContext(ctx, `DELETE FROM dots WHERE owner_id=$1 AND dot_id=$2`, ownerID, dotID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (d *dots) Search(ctx context.Context, req model.SearchRequest) ([]*model.Dot, error) {
	query := `SELECT dot_id, owner_id, timeline, name, at_time, note FROM dots WHERE owner_id=$1`
	args := []interface{}{req.OwnerID}
	if req.Timeline != "" {
		args = append(args, req.Timeline)
		query += fmt.Sprintf(` AND timeline=$%d`, len(args))
	}
	if req.Name != "" {
		args = append(args, likePattern(req.Name))
		query += fmt.Sprintf(` AND name ILIKE $%d ESCAPE '\'`, len(args))
	}
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
        WHERE owner_id=$1 AND timeline=$2 AND name=$3
          AND NOT (start_time > $4 OR end_time < $5)
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
        WHERE owner_id=$1 AND timeline=$2 AND name<>$3
          AND NOT (start_time > $4 OR end_time < $5)
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
		if _, err := tx.ExecContext(ctx, `DELETE FROM dashes WHERE owner_id=$1 AND dash_id=$2`, ownerID, id); err != nil {
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
            VALUES ($1,$2,$3,$4,$5,$6,$7)
            ON CONFLICT (dash_id) DO UPDATE SET
                timeline=EXCLUDED.timeline, name=EXCLUDED.name,
                start_time=EXCLUDED.start_time, end_time=EXCLUDED.end_time, note=EXCLUDED.note
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
        SELECT `+dashCols+` FROM dashes WHERE owner_id=$1 AND dash_id=$2
    `, ownerID, dashID)
	if err := row.Scan(&out.DashID, &out.OwnerID, &out.Timeline, &out.Name, &out.Start, &out.End, &out.Note); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (d *dashes) Delete(ctx context.Context, ownerID, dashID string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM dashes WHERE owner_id=$1 AND dash_id=$2`, ownerID, dashID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (d *dashes) Search(ctx context.Context, req model.SearchRequest) ([]*model.Dash, error) {
	query := `SELECT ` + dashCols + ` FROM dashes WHERE owner_id=$1`
	args := []interface{}{req.OwnerID}
	if req.Timeline != "" {
		args = append(args, req.Timeline)
		query += fmt.Sprintf(` AND timeline=$%d`, len(args))
	}
	if req.Name != "" {
		args = append(args, likePattern(req.Name))
		query += fmt.Sprintf(` AND name ILIKE $%d ESCAPE '\'`, len(args))
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
        INSERT INTO pendings (pending_id, owner_id, timeline, name, start_time, note) VALUES ($1,$2,$3,$4,$5,$6)
    `, out.PendingID, out.OwnerID, out.Timeline, out.Name, out.Start, out.Note)
	if err != nil {
		if isUniqueViolation(err) {
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
        FROM pendings WHERE owner_id=$1 AND timeline=$2 AND name=$3
    `, ownerID, timeline, name)
	if err := row.Scan(&out.PendingID, &out.OwnerID, &out.Timeline, &out.Name, &out.Start, &out.Note); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (p *pendings) Delete(ctx context.Context, ownerID, pendingID string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM pendings WHERE owner_id=$1 AND pending_id=$2`, ownerID, pendingID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (p *pendings) Search(ctx context.Context, req model.SearchRequest) ([]*model.Pending, error) {
	query := `SELECT pending_id, owner_id, timeline, name, start_time, note FROM pendings WHERE owner_id=$1`
	args := []interface{}{req.OwnerID}
	if req.Timeline != "" {
		args = append(args, req.Timeline)
		query += fmt.Sprintf(` AND timeline=$%d`, len(args))
	}
	if req.Name != "" {
		args = append(args, likePattern(req.Name))
		query += fmt.Sprintf(` AND name ILIKE $%d ESCAPE '\'`, len(args))
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
