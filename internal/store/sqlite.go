package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/agentcore/ramengine/internal/annindex"
	"github.com/agentcore/ramengine/internal/model"
)

const schemaVersion = 1

// SQLiteStore implements Store on top of modernc.org/sqlite (pure Go, no
// cgo) plus an in-process chromem-go ANN index.
type SQLiteStore struct {
	db   *sql.DB
	ann  *annindex.Index
	log  zerolog.Logger
	path string
}

// Open opens or creates the database at dbPath, applies migrations, and
// rebuilds the ANN index from stored embeddings. ann is owned by the
// caller (engine.New) so tests can inject an already-Disabled index.
func Open(ctx context.Context, dbPath string, ann *annindex.Index, log zerolog.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:   db,
		ann:  ann,
		log:  log,
		path: dbPath,
	}

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if err := s.rebuildANN(ctx); err != nil {
		s.log.Warn().Err(err).Msg("ann rebuild failed; continuing with a possibly-stale index")
	}

	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id               TEXT PRIMARY KEY,
		parent_id        TEXT NOT NULL,
		chunk_index      INTEGER NOT NULL DEFAULT 0,
		content          TEXT NOT NULL,
		kind             TEXT NOT NULL DEFAULT 'unclassified',
		scope            TEXT NOT NULL DEFAULT 'global',
		importance       REAL NOT NULL DEFAULT 0.5,
		token_count      INTEGER NOT NULL DEFAULT 0,
		recall_count     INTEGER NOT NULL DEFAULT 0,
		last_recalled_at INTEGER,
		validity_score   REAL NOT NULL DEFAULT 1.0,
		is_negative      INTEGER NOT NULL DEFAULT 0,
		created_at       INTEGER NOT NULL,
		updated_at       INTEGER NOT NULL,
		embedding        BLOB
	);
	CREATE INDEX IF NOT EXISTS idx_memories_scope_updated ON memories(scope, updated_at DESC);
	CREATE INDEX IF NOT EXISTS idx_memories_parent_chunk ON memories(parent_id, chunk_index ASC);
	CREATE INDEX IF NOT EXISTS idx_memories_validity ON memories(validity_score DESC);

	CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(
		content,
		content=memories,
		content_rowid=rowid
	);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	// Additive, forward-compatible migration for older databases: add any
	// column this version expects but an earlier one didn't create, and
	// backfill parent_id from id where it was never set. Errors from
	// ALTER on an already-current schema are expected and ignored.
	for _, stmt := range []string{
		`ALTER TABLE memories ADD COLUMN parent_id TEXT`,
		`ALTER TABLE memories ADD COLUMN chunk_index INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE memories ADD COLUMN validity_score REAL NOT NULL DEFAULT 1.0`,
		`ALTER TABLE memories ADD COLUMN is_negative INTEGER NOT NULL DEFAULT 0`,
	} {
		s.db.ExecContext(ctx, stmt)
	}
	s.db.ExecContext(ctx, `UPDATE memories SET parent_id = id WHERE parent_id IS NULL OR parent_id = ''`)

	for _, stmt := range []string{
		`CREATE TRIGGER IF NOT EXISTS memories_ai AFTER INSERT ON memories BEGIN
			INSERT INTO memories_fts(rowid, content) VALUES (new.rowid, new.content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS memories_ad AFTER DELETE ON memories BEGIN
			INSERT INTO memories_fts(memories_fts, rowid, content) VALUES('delete', old.rowid, old.content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS memories_au AFTER UPDATE ON memories BEGIN
			INSERT INTO memories_fts(memories_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			INSERT INTO memories_fts(rowid, content) VALUES (new.rowid, new.content);
		END`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create fts trigger: %w", err)
		}
	}

	s.db.ExecContext(ctx, `INSERT OR IGNORE INTO memories_fts(rowid, content) SELECT rowid, content FROM memories`)

	var userVersion int
	s.db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&userVersion)
	if userVersion < schemaVersion {
		s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	}

	return nil
}

func (s *SQLiteStore) rebuildANN(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, scope, kind, embedding FROM memories WHERE embedding IS NOT NULL`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var rebuild []annindex.RebuildRow
	for rows.Next() {
		var id, scope, kind string
		var blob []byte
		if err := rows.Scan(&id, &scope, &kind, &blob); err != nil {
			return err
		}
		rebuild = append(rebuild, annindex.RebuildRow{
			ID:        id,
			Embedding: bytesToVector(blob),
			Scope:     model.Scope(scope),
			Kind:      model.Kind(kind),
		})
	}
	return s.ann.Rebuild(ctx, rebuild)
}

func vectorToBytes(v model.Vector) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(b []byte) model.Vector {
	if len(b) == 0 {
		return nil
	}
	v := make(model.Vector, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }
func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// InsertRows implements Store.InsertRows.
func (s *SQLiteStore) InsertRows(ctx context.Context, rows []model.Record) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage error: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO memories (
			id, parent_id, chunk_index, content, kind, scope, importance,
			token_count, recall_count, last_recalled_at, validity_score,
			is_negative, created_at, updated_at, embedding
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage error: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		var lastRecalled interface{}
		if r.LastRecalledAt != nil {
			lastRecalled = toMillis(*r.LastRecalledAt)
		}
		isNeg := 0
		if r.IsNegative {
			isNeg = 1
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.ParentID, r.ChunkIndex, r.Content, string(r.Kind), string(r.Scope), r.Importance,
			r.TokenCount, r.RecallCount, lastRecalled, r.ValidityScore,
			isNeg, toMillis(r.CreatedAt), toMillis(r.UpdatedAt), vectorToBytes(r.Embedding),
		); err != nil {
			return fmt.Errorf("storage error: insert row %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage error: commit: %w", err)
	}

	// ANN insertion is a separate, best-effort call outside the SQL
	// transaction: it may silently skip a row but must never abort the
	// primary write.
	var annErr *multierror.Error
	for _, r := range rows {
		if len(r.Embedding) == 0 {
			continue
		}
		if err := s.ann.Upsert(ctx, r.ID, r.Embedding, r.Scope, r.Kind); err != nil {
			annErr = multierror.Append(annErr, fmt.Errorf("ann upsert %s: %w", r.ID, err))
		}
	}
	if annErr != nil {
		s.log.Warn().Err(annErr).Msg("ann index update failed for one or more rows")
	}

	return nil
}

// FindSemanticDuplicate implements Store.FindSemanticDuplicate.
func (s *SQLiteStore) FindSemanticDuplicate(ctx context.Context, emb model.Vector, scope model.Scope, threshold float64) (*model.Record, error) {
	if len(emb) == 0 {
		return nil, nil
	}
	neighbors, err := s.ann.Query(ctx, emb, 12, &scope)
	if err != nil || len(neighbors) == 0 {
		return nil, nil
	}

	var best *model.Record
	var bestSim float64
	for _, n := range neighbors {
		rec, err := s.LoadByID(ctx, n.ID)
		if err != nil || rec == nil || len(rec.Embedding) == 0 {
			continue
		}
		sim := cosine(emb, rec.Embedding)
		if sim > bestSim {
			bestSim = sim
			best = rec
		}
	}
	if best == nil || bestSim < threshold {
		return nil, nil
	}
	return best, nil
}

func cosine(a, b model.Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// MergeInto implements Store.MergeInto.
func (s *SQLiteStore) MergeInto(ctx context.Context, targetID, content string, kind model.Kind, emb model.Vector, tokenCount int, newImportance float64) (model.Record, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Record{}, fmt.Errorf("storage error: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE memories SET
			content = ?,
			kind = ?,
			embedding = ?,
			token_count = ?,
			importance = MIN(1.0, 0.9*importance + 0.1*?),
			validity_score = MIN(1.0, validity_score + 0.01),
			updated_at = ?
		WHERE id = ?`,
		content, string(kind), vectorToBytes(emb), tokenCount, newImportance, toMillis(now), targetID)
	if err != nil {
		return model.Record{}, fmt.Errorf("storage error: merge update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Record{}, fmt.Errorf("storage error: commit: %w", err)
	}

	rec, err := s.LoadByID(ctx, targetID)
	if err != nil || rec == nil {
		return model.Record{}, fmt.Errorf("storage error: reload merged row %s", targetID)
	}

	if len(emb) > 0 {
		if err := s.ann.Upsert(ctx, targetID, emb, rec.Scope, kind); err != nil {
			s.log.Warn().Err(err).Str("id", targetID).Msg("ann upsert failed after merge")
		}
	}

	return *rec, nil
}

// BumpRecallMetrics implements Store.BumpRecallMetrics.
func (s *SQLiteStore) BumpRecallMetrics(ctx context.Context, ids []string, boost float64, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage error: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE memories SET
			recall_count = recall_count + 1,
			last_recalled_at = ?,
			updated_at = ?,
			importance = MIN(1.0, 0.98*importance + ?)
		WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("storage error: prepare bump: %w", err)
	}
	defer stmt.Close()

	ms := toMillis(now)
	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, ms, ms, boost, id); err != nil {
			return fmt.Errorf("storage error: bump %s: %w", id, err)
		}
	}
	return tx.Commit()
}

const recordColumns = `id, parent_id, chunk_index, content, kind, scope, importance,
	token_count, recall_count, last_recalled_at, validity_score, is_negative,
	created_at, updated_at, embedding`

func scanRecord(row *sql.Rows) (model.Record, error) {
	var r model.Record
	var kind, scope string
	var lastRecalled sql.NullInt64
	var isNeg int
	var createdAt, updatedAt int64
	var blob []byte

	err := row.Scan(&r.ID, &r.ParentID, &r.ChunkIndex, &r.Content, &kind, &scope, &r.Importance,
		&r.TokenCount, &r.RecallCount, &lastRecalled, &r.ValidityScore, &isNeg,
		&createdAt, &updatedAt, &blob)
	if err != nil {
		return r, err
	}
	r.Kind = model.Kind(kind)
	r.Scope = model.Scope(scope)
	r.IsNegative = isNeg != 0
	r.CreatedAt = fromMillis(createdAt)
	r.UpdatedAt = fromMillis(updatedAt)
	if lastRecalled.Valid {
		t := fromMillis(lastRecalled.Int64)
		r.LastRecalledAt = &t
	}
	r.Embedding = bytesToVector(blob)
	return r, nil
}

// LoadByIDs implements Store.LoadByIDs.
func (s *SQLiteStore) LoadByIDs(ctx context.Context, ids []string) ([]model.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT %s FROM memories WHERE id IN (%s)`, recordColumns, strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage error: load by ids: %w", err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("storage error: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// LoadByID implements Store.LoadByID.
func (s *SQLiteStore) LoadByID(ctx context.Context, id string) (*model.Record, error) {
	recs, err := s.LoadByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

// Siblings implements Store.Siblings.
func (s *SQLiteStore) Siblings(ctx context.Context, parentID string, chunkIndex, radius int, exclude map[string]bool) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM memories
		WHERE parent_id = ? AND chunk_index BETWEEN ? AND ?
		ORDER BY chunk_index ASC`, recordColumns),
		parentID, chunkIndex-radius, chunkIndex+radius)
	if err != nil {
		return nil, fmt.Errorf("storage error: siblings: %w", err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("storage error: scan: %w", err)
		}
		if exclude[r.ID] {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ANNQuery implements Store.ANNQuery.
func (s *SQLiteStore) ANNQuery(ctx context.Context, vec model.Vector, k int, scope *model.Scope) ([]annindex.Neighbor, error) {
	return s.ann.Query(ctx, vec, k, scope)
}

// FTSQuery implements Store.FTSQuery.
func (s *SQLiteStore) FTSQuery(ctx context.Context, text string, k int) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id FROM memories_fts f
		JOIN memories m ON m.rowid = f.rowid
		WHERE memories_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, ftsQuery(text), k)
	if err != nil {
		// FTS is best-effort: a malformed MATCH query or missing index
		// degrades to "no lexical hits", not an error the caller must
		// handle.
		s.log.Warn().Err(err).Msg("fts query failed; degrading to no lexical hits")
		return nil, nil
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ftsQuery quotes each whitespace-separated term of text as an FTS5 string
// so punctuation and FTS5 operator characters in user queries never produce
// a syntax error. FTS5 reads the space-joined terms as an implicit AND:
// every term must occur, in any order and position.
func ftsQuery(text string) string {
	terms := strings.Fields(text)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

// List implements Store.List.
func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]model.Summary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 30
	}
	if limit > 200 {
		limit = 200
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	where := []string{"1=1"}
	var args []interface{}
	if opts.Scope != nil {
		where = append(where, "scope = ?")
		args = append(args, string(*opts.Scope))
	}
	if opts.Kind != nil {
		where = append(where, "kind = ?")
		args = append(args, string(*opts.Kind))
	}
	if opts.Query != "" {
		where = append(where, "content LIKE ? ESCAPE '\\'")
		args = append(args, "%"+likeEscape(opts.Query)+"%")
	}

	query := fmt.Sprintf(`
		SELECT id, parent_id, chunk_index, content, kind, scope, importance,
		       token_count, recall_count, last_recalled_at, validity_score, is_negative,
		       created_at, updated_at
		FROM memories
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT ? OFFSET ?`, strings.Join(where, " AND "))
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage error: list: %w", err)
	}
	defer rows.Close()

	var out []model.Summary
	for rows.Next() {
		var sum model.Summary
		var kind, scope string
		var lastRecalled sql.NullInt64
		var isNeg int
		var createdAt, updatedAt int64
		if err := rows.Scan(&sum.ID, &sum.ParentID, &sum.ChunkIndex, &sum.Content, &kind, &scope,
			&sum.Importance, &sum.TokenCount, &sum.RecallCount, &lastRecalled, &sum.ValidityScore,
			&isNeg, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage error: scan summary: %w", err)
		}
		sum.Kind = model.Kind(kind)
		sum.Scope = model.Scope(scope)
		sum.IsNegative = isNeg != 0
		sum.CreatedAt = fromMillis(createdAt)
		sum.UpdatedAt = fromMillis(updatedAt)
		if lastRecalled.Valid {
			t := fromMillis(lastRecalled.Int64)
			sum.LastRecalledAt = &t
		}
		out = append(out, sum)
	}
	return out, nil
}

func likeEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

// Delete implements Store.Delete.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("storage error: delete: %w", err)
	}
	if err := s.ann.Delete(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("id", id).Msg("ann delete failed")
	}
	return nil
}

// CountByKind implements Store.CountByKind.
func (s *SQLiteStore) CountByKind(ctx context.Context, scope *model.Scope, query string) (map[model.Kind]int, error) {
	counts := make(map[model.Kind]int, len(model.ValidKinds))
	for k := range model.ValidKinds {
		counts[k] = 0
	}

	where := []string{"1=1"}
	var args []interface{}
	if scope != nil {
		where = append(where, "scope = ?")
		args = append(args, string(*scope))
	}
	if query != "" {
		where = append(where, "content LIKE ? ESCAPE '\\'")
		args = append(args, "%"+likeEscape(query)+"%")
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT kind, COUNT(*) FROM memories WHERE %s GROUP BY kind`, strings.Join(where, " AND ")), args...)
	if err != nil {
		return nil, fmt.Errorf("storage error: count by kind: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("storage error: scan count: %w", err)
		}
		counts[model.Kind(kind)] = n
	}
	return counts, nil
}

// MarkInvalid implements Store.MarkInvalid.
func (s *SQLiteStore) MarkInvalid(ctx context.Context, id string, score float64, now time.Time) error {
	if score < 0 {
		score = 0
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE memories SET validity_score = ?, is_negative = 1, updated_at = ? WHERE id = ?`,
		score, toMillis(now), id)
	if err != nil {
		return fmt.Errorf("storage error: mark invalid: %w", err)
	}
	return nil
}

// CorpusSize implements Store.CorpusSize.
func (s *SQLiteStore) CorpusSize(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage error: corpus size: %w", err)
	}
	return n, nil
}

// Stats implements Store.Stats.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	corpusSize, err := s.CorpusSize(ctx)
	if err != nil {
		return Stats{}, err
	}
	byKind, err := s.CountByKind(ctx, nil, "")
	if err != nil {
		return Stats{}, err
	}

	byScope := map[model.Scope]int{}
	rows, err := s.db.QueryContext(ctx, `SELECT scope, COUNT(*) FROM memories GROUP BY scope`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var scope string
			var n int
			if rows.Scan(&scope, &n) == nil {
				byScope[model.Scope(scope)] = n
			}
		}
	}

	var dbSize int64
	if info, err := os.Stat(s.path); err == nil {
		dbSize = info.Size()
	}

	enabled, msg := s.ann.Status()
	summary := fmt.Sprintf("%s memories, %s on disk", humanize.Comma(int64(corpusSize)), humanize.Bytes(uint64(dbSize)))
	return Stats{
		CorpusSize:   corpusSize,
		ByKind:       byKind,
		ByScope:      byScope,
		DBSizeBytes:  dbSize,
		ANNEnabled:   enabled,
		ANNMessage:   msg,
		HumanSummary: summary,
	}, nil
}

// ExportAll implements Store.ExportAll.
func (s *SQLiteStore) ExportAll(ctx context.Context) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM memories ORDER BY created_at ASC`, recordColumns))
	if err != nil {
		return nil, fmt.Errorf("storage error: export: %w", err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("storage error: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Import implements Store.Import: skips any record whose id already exists
// and inserts the rest with a single InsertRows call.
func (s *SQLiteStore) Import(ctx context.Context, records []model.Record) (int, error) {
	var toInsert []model.Record
	for _, r := range records {
		existing, err := s.LoadByID(ctx, r.ID)
		if err != nil {
			return 0, err
		}
		if existing == nil {
			toInsert = append(toInsert, r)
		}
	}
	if len(toInsert) == 0 {
		return 0, nil
	}
	if err := s.InsertRows(ctx, toInsert); err != nil {
		return 0, err
	}
	return len(toInsert), nil
}

// ANNStatus implements Store.ANNStatus.
func (s *SQLiteStore) ANNStatus() (enabled bool, message string) {
	return s.ann.Status()
}

// Close implements Store.Close.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
