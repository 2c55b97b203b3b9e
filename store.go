package pubstatic

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// NodeStore wraps a SQLite database holding the content nodes of a site.
// Nodes survive between builds so unchanged files can be skipped.
type NodeStore struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*NodeStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the static server read while a build writes; busy_timeout
	// makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &NodeStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *NodeStore) Close() error {
	return s.db.Close()
}

func (s *NodeStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS nodes (
    id TEXT PRIMARY KEY,
    parent TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL,
    media_type TEXT NOT NULL DEFAULT '',
    digest TEXT NOT NULL DEFAULT '',
    source_path TEXT NOT NULL,
    frontmatter TEXT NOT NULL DEFAULT '{}',
    fields TEXT NOT NULL DEFAULT '{}',
    body TEXT NOT NULL DEFAULT '',
    excerpt TEXT NOT NULL DEFAULT '',
    time_to_read INTEGER NOT NULL DEFAULT 0,
    date TEXT
);
CREATE INDEX IF NOT EXISTS nodes_type_date ON nodes (type, date);
`)
	return err
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveNode upserts a node. Replacing a node resets its fields.
func (s *NodeStore) SaveNode(ctx context.Context, n ContentNode) error {
	return saveNode(ctx, s.db, n)
}

// SaveNodeWithFields upserts a node and then sets fields on it in one
// transaction. Either the node and all its fields are stored or nothing is.
func (s *NodeStore) SaveNodeWithFields(ctx context.Context, n ContentNode, fields ...NodeField) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveNode(ctx, tx, n); err != nil {
		return err
	}
	for _, f := range fields {
		if err := setField(ctx, tx, f); err != nil {
			return fmt.Errorf("set %s: %w", f.Name, err)
		}
	}
	return tx.Commit()
}

func saveNode(ctx context.Context, ex execer, n ContentNode) error {
	fm, err := json.Marshal(frontmatterOrEmpty(n.Frontmatter))
	if err != nil {
		return fmt.Errorf("encode frontmatter: %w", err)
	}
	fields := n.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	fj, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	var date sql.NullString
	if t, ok := FrontmatterDate(n.Frontmatter); ok {
		date = sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
	}
	_, err = ex.ExecContext(ctx, `INSERT OR REPLACE INTO nodes
		(id, parent, type, media_type, digest, source_path, frontmatter, fields, body, excerpt, time_to_read, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Parent, n.Internal.Type, n.Internal.MediaType, n.Internal.ContentDigest, n.SourcePath,
		string(fm), string(fj), n.Body, n.Excerpt, n.TimeToRead, date)
	return err
}

// SetField writes a single field on an existing node.
func (s *NodeStore) SetField(ctx context.Context, f NodeField) error {
	return setField(ctx, s.db, f)
}

func setField(ctx context.Context, ex execer, f NodeField) error {
	v, err := json.Marshal(f.Value)
	if err != nil {
		return fmt.Errorf("encode field %s: %w", f.Name, err)
	}
	res, err := ex.ExecContext(ctx,
		`UPDATE nodes SET fields = json_set(fields, '$.' || ?, json(?)) WHERE id = ?`,
		f.Name, string(v), f.NodeID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetNode returns a node by ID.
func (s *NodeStore) GetNode(ctx context.Context, id string) (ContentNode, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id)
	return scanNode(row)
}

// PostBySlug returns the Mdx node whose slug field equals slug.
func (s *NodeStore) PostBySlug(ctx context.Context, slug string) (ContentNode, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes
		WHERE type = ? AND json_extract(fields, '$.slug') = ?`, KindMdx, slug)
	return scanNode(row)
}

// NodeDigests returns the content digest of every stored node keyed by ID.
func (s *NodeStore) NodeDigests(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, digest FROM nodes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, digest string
		if err := rows.Scan(&id, &digest); err != nil {
			return nil, err
		}
		out[id] = digest
	}
	return out, rows.Err()
}

// DeleteNode removes a node by ID.
func (s *NodeStore) DeleteNode(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	return err
}

// QueryPosts returns all nodes of kind ordered by date descending, undated
// nodes last. Rows that cannot be decoded are reported in Errors.
func (s *NodeStore) QueryPosts(ctx context.Context, kind string) QueryResult {
	rows, err := s.db.QueryContext(ctx, `SELECT id, frontmatter, fields, excerpt, time_to_read
		FROM nodes WHERE type = ? ORDER BY date IS NULL, date DESC, source_path`, kind)
	if err != nil {
		return QueryResult{Errors: []error{err}}
	}
	defer rows.Close()

	var res QueryResult
	for rows.Next() {
		var id, fm, fields, excerpt string
		var ttr int
		if err := rows.Scan(&id, &fm, &fields, &excerpt, &ttr); err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		var front Frontmatter
		if err := decodeJSON(fm, &front); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("node %s: decode frontmatter: %w", id, err))
			continue
		}
		var f map[string]any
		if err := decodeJSON(fields, &f); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("node %s: decode fields: %w", id, err))
			continue
		}
		post := postFromNode(ContentNode{
			ID:          id,
			Frontmatter: front,
			Fields:      f,
			Excerpt:     excerpt,
			TimeToRead:  ttr,
		})
		res.Posts = append(res.Posts, post)
	}
	if err := rows.Err(); err != nil {
		res.Errors = append(res.Errors, err)
	}
	return res
}

const nodeColumns = `id, parent, type, media_type, digest, source_path, frontmatter, fields, body, excerpt, time_to_read`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (ContentNode, error) {
	var n ContentNode
	var fm, fields string
	if err := row.Scan(&n.ID, &n.Parent, &n.Internal.Type, &n.Internal.MediaType, &n.Internal.ContentDigest,
		&n.SourcePath, &fm, &fields, &n.Body, &n.Excerpt, &n.TimeToRead); err != nil {
		return ContentNode{}, err
	}
	if err := decodeJSON(fm, &n.Frontmatter); err != nil {
		return ContentNode{}, fmt.Errorf("node %s: decode frontmatter: %w", n.ID, err)
	}
	if err := decodeJSON(fields, &n.Fields); err != nil {
		return ContentNode{}, fmt.Errorf("node %s: decode fields: %w", n.ID, err)
	}
	return n, nil
}

// postFromNode projects an Mdx node onto the fields page planning needs.
func postFromNode(n ContentNode) PostNode {
	post := PostNode{
		ID:         n.ID,
		Slug:       stringField(n.Fields, SlugField),
		Categories: Categories(n.Frontmatter),
		Excerpt:    n.Excerpt,
		TimeToRead: n.TimeToRead,
	}
	if n.Frontmatter.Has("title") {
		post.Title = stringifyValue(n.Frontmatter["title"])
	}
	if t, ok := FrontmatterDate(n.Frontmatter); ok {
		post.Date = t
	}
	return post
}

// decodeJSON decodes a stored JSON column. Numbers stay json.Number so
// integers keep the digits they were written with.
func decodeJSON(data string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	return dec.Decode(v)
}

func frontmatterOrEmpty(f Frontmatter) Frontmatter {
	if f == nil {
		return Frontmatter{}
	}
	return f
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
