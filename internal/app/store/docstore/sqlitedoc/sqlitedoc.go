// internal/app/store/docstore/sqlitedoc/sqlitedoc.go

// Package sqlitedoc implements docstore on SQLite.
//
// Each collection is a table of (id, body) rows. The body is MongoDB
// Extended JSON (relaxed), so bson struct tags drive decoding exactly as they
// do against Mongo, and timestamps round-trip as dates. Field queries and
// indexes go through json_extract.
package sqlitedoc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/influencerhub/internal/app/store/docstore"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	_ "modernc.org/sqlite"
)

// Memory is the path for a private in-memory database.
const Memory = ":memory:"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
var fieldRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Store is a docstore.Store over one SQLite database.
type Store struct {
	db *sql.DB

	mu     sync.Mutex
	tables map[string]bool
}

// Open opens (or creates) the database at path. Memory opens a private
// in-memory database on a single connection.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
	if path == Memory {
		dsn = Memory
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == Memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	return New(db), nil
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db, tables: map[string]bool{}}
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Collection(name string) docstore.Collection {
	return &Collection{s: s, table: name}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

func (s *Store) ensureTable(ctx context.Context, name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("sqlitedoc: invalid collection name %q", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tables[name] {
		return nil
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		id   TEXT PRIMARY KEY,
		body TEXT NOT NULL
	)`, name)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}
	s.tables[name] = true
	return nil
}

// Collection is a docstore.Collection over one table.
type Collection struct {
	s     *Store
	table string
}

func (c *Collection) Get(ctx context.Context, id string) (docstore.Snapshot, error) {
	if err := c.s.ensureTable(ctx, c.table); err != nil {
		return nil, err
	}
	var body string
	err := c.s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT body FROM %q WHERE id = ?`, c.table), id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snapshot{id: id, body: []byte(body)}, nil
}

// Insert stores body under a new time-ordered UUID, so id order follows
// insertion order.
func (c *Collection) Insert(ctx context.Context, body docstore.Doc) (string, error) {
	if err := c.s.ensureTable(ctx, c.table); err != nil {
		return "", err
	}
	u, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	id := u.String()

	enc, err := encode(stampServerTime(body, now()))
	if err != nil {
		return "", err
	}
	_, err = c.s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %q (id, body) VALUES (?, ?)`, c.table), id, enc)
	if err != nil {
		return "", mapErr(err)
	}
	return id, nil
}

// Merge reads, deep-merges and rewrites the body inside one transaction.
func (c *Collection) Merge(ctx context.Context, id string, patch docstore.Doc) error {
	if err := c.s.ensureTable(ctx, c.table); err != nil {
		return err
	}
	tx, err := c.s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var body string
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT body FROM %q WHERE id = ?`, c.table), id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.ErrNotFound
	}
	if err != nil {
		return err
	}

	current := bson.M{}
	if err := bson.UnmarshalExtJSON([]byte(body), false, &current); err != nil {
		return fmt.Errorf("decode %s/%s: %w", c.table, id, err)
	}
	merged := deepMerge(current, stampServerTime(patch, now()))

	enc, err := encode(merged)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %q SET body = ? WHERE id = ?`, c.table), enc, id); err != nil {
		return mapErr(err)
	}
	return tx.Commit()
}

func (c *Collection) Delete(ctx context.Context, id string) error {
	if err := c.s.ensureTable(ctx, c.table); err != nil {
		return err
	}
	_, err := c.s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %q WHERE id = ?`, c.table), id)
	return err
}

func (c *Collection) Find(ctx context.Context, q docstore.Query) ([]docstore.Snapshot, error) {
	if err := c.s.ensureTable(ctx, c.table); err != nil {
		return nil, err
	}

	var (
		sb    strings.Builder
		where []string
		args  []any
	)
	fmt.Fprintf(&sb, `SELECT id, body FROM %q`, c.table)
	if q.Index != "" {
		if !identRe.MatchString(q.Index) {
			return nil, fmt.Errorf("sqlitedoc: invalid index name %q", q.Index)
		}
		fmt.Fprintf(&sb, ` INDEXED BY %q`, q.Index)
	}

	for _, cond := range q.Where {
		expr, err := fieldExpr(cond.Field)
		if err != nil {
			return nil, err
		}
		where = append(where, expr+" "+sqlOp(cond.Op)+" ?")
		args = append(args, sqlValue(cond.Value))
	}

	order, err := fieldExpr(q.OrderBy)
	if err != nil {
		return nil, err
	}
	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	if q.StartAfter != nil {
		op := ">"
		if q.Descending {
			op = "<"
		}
		where = append(where, order+" "+op+" ?")
		args = append(args, sqlValue(q.StartAfter))
	}

	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s", order, dir)
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}

	rows, err := c.s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []docstore.Snapshot
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		out = append(out, &snapshot{id: id, body: []byte(body)})
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// EnsureIndexes creates an expression index per spec. An existing index of
// the same name with different uniqueness is dropped and recreated.
func (c *Collection) EnsureIndexes(ctx context.Context, specs []docstore.IndexSpec) error {
	if err := c.s.ensureTable(ctx, c.table); err != nil {
		return err
	}
	existing, err := c.indexUniqueness(ctx)
	if err != nil {
		return err
	}

	var errs []string
	for _, spec := range specs {
		if !identRe.MatchString(spec.Name) {
			errs = append(errs, fmt.Sprintf("%s: invalid index name %q", c.table, spec.Name))
			continue
		}
		expr, err := fieldExpr(spec.Field)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s(%s): %v", c.table, spec.Name, err))
			continue
		}
		if unique, ok := existing[spec.Name]; ok {
			if unique == spec.Unique {
				continue
			}
			if _, err := c.s.db.ExecContext(ctx, fmt.Sprintf(`DROP INDEX %q`, spec.Name)); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", c.table, spec.Name, err))
				continue
			}
		}
		kind := "INDEX"
		if spec.Unique {
			kind = "UNIQUE INDEX"
		}
		ddl := fmt.Sprintf(`CREATE %s IF NOT EXISTS %q ON %q (%s)`, kind, spec.Name, c.table, expr)
		if _, err := c.s.db.ExecContext(ctx, ddl); err != nil {
			errs = append(errs, fmt.Sprintf("%s(%s): %v", c.table, spec.Name, err))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// indexUniqueness maps index name to its unique flag.
func (c *Collection) indexUniqueness(ctx context.Context) (map[string]bool, error) {
	rows, err := c.s.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA index_list(%q)`, c.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var (
			seq     int
			name    string
			unique  int
			origin  string
			partial int
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, err
		}
		out[name] = unique == 1
	}
	return out, rows.Err()
}

type snapshot struct {
	id   string
	body []byte
}

func (s *snapshot) ID() string { return s.id }

func (s *snapshot) Decode(v any) error {
	return bson.UnmarshalExtJSON(s.body, false, v)
}

// fieldExpr is the SQL expression for a document field; "" is the id.
func fieldExpr(field string) (string, error) {
	if field == "" || field == "_id" {
		return "id", nil
	}
	if !fieldRe.MatchString(field) {
		return "", fmt.Errorf("sqlitedoc: invalid field %q", field)
	}
	return fmt.Sprintf("json_extract(body, '$.%s')", field), nil
}

func sqlOp(op docstore.Op) string {
	switch op {
	case docstore.Gte:
		return ">="
	case docstore.Lt:
		return "<"
	default:
		return "="
	}
}

// sqlValue maps a condition value onto what json_extract yields for it.
func sqlValue(v any) any {
	switch t := v.(type) {
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return v
	}
}

func encode(d bson.M) (string, error) {
	b, err := bson.MarshalExtJSON(d, false, false)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(b), nil
}

// now is the backend clock, at BSON datetime precision.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// stampServerTime returns a copy of d with ServerTime placeholders replaced
// by t, at any depth.
func stampServerTime(d map[string]any, t time.Time) bson.M {
	out := make(bson.M, len(d))
	for k, v := range d {
		if docstore.IsServerTime(v) {
			out[k] = t
			continue
		}
		if m, ok := asMap(v); ok {
			out[k] = stampServerTime(m, t)
			continue
		}
		out[k] = v
	}
	return out
}

// deepMerge writes patch over dst. Where both sides hold a document, the
// documents are merged key by key.
func deepMerge(dst bson.M, patch map[string]any) bson.M {
	for k, pv := range patch {
		pm, pIsDoc := asMap(pv)
		dm, dIsDoc := asMap(dst[k])
		if pIsDoc && dIsDoc {
			dst[k] = deepMerge(dm, pm)
			continue
		}
		dst[k] = pv
	}
	return dst
}

func asMap(v any) (bson.M, bool) {
	switch t := v.(type) {
	case map[string]any:
		return bson.M(t), true
	case primitive.M:
		return t, true
	case primitive.D:
		m := make(bson.M, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return m, true
	default:
		return nil, false
	}
}

func mapErr(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such index"), strings.Contains(msg, "no query solution"):
		return fmt.Errorf("%w: %v", docstore.ErrIndexMissing, err)
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", docstore.ErrDuplicate, err)
	default:
		return err
	}
}
