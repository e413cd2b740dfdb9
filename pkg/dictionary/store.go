package dictionary

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

// SetupSchema initializes the tables used by Store. It should be called once
// on a new database before any other operations are performed. It is
// idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaWords = `
CREATE TABLE IF NOT EXISTS dictionary_words (
    word_id INTEGER PRIMARY KEY,
    word_name TEXT NOT NULL UNIQUE,
    word_type TEXT NOT NULL DEFAULT ''
);
`
		schemaDefinitions = `
CREATE TABLE IF NOT EXISTS dictionary_definitions (
    word_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    definition_text TEXT NOT NULL,
    PRIMARY KEY (word_id, position)
);
`
		schemaRuns = `
CREATE TABLE IF NOT EXISTS generation_runs (
    run_id TEXT PRIMARY KEY,
    source_word TEXT NOT NULL DEFAULT '',
    model_order INTEGER NOT NULL,
    iterations INTEGER NOT NULL,
    reseeds INTEGER NOT NULL,
    word_count INTEGER NOT NULL,
    run_text TEXT NOT NULL,
    created_at TEXT NOT NULL
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaWords); err != nil {
		return fmt.Errorf("could not create words schema: %w", err)
	}

	if _, err = tx.Exec(schemaDefinitions); err != nil {
		return fmt.Errorf("could not create definitions schema: %w", err)
	}

	if _, err = tx.Exec(schemaRuns); err != nil {
		return fmt.Errorf("could not create runs schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Run is one stored generation result.
type Run struct {
	ID         string    `json:"id"`
	SourceWord string    `json:"source_word,omitempty"`
	Order      int       `json:"order"`
	Iterations int       `json:"iterations"`
	Reseeds    int       `json:"reseeds"`
	Words      int       `json:"words"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists dictionaries and generation runs in a SQLite database.
type Store struct {
	db             *sql.DB
	stmtUpsertWord *sql.Stmt
	stmtClearDefs  *sql.Stmt
	stmtInsertDef  *sql.Stmt
	stmtCountWords *sql.Stmt
	stmtCountDefs  *sql.Stmt
	stmtInsertRun  *sql.Stmt
	stmtListRuns   *sql.Stmt
	logger         *slog.Logger
}

// NewStore creates a Store on a database prepared with SetupSchema. It
// pre-compiles all SQL statements, returning an error if any preparation fails.
func NewStore(db *sql.DB) (*Store, error) {
	stmtUpsertWord, err := db.Prepare(`INSERT INTO dictionary_words (word_name, word_type) VALUES (?, ?) ON CONFLICT(word_name) DO UPDATE SET word_type = CASE WHEN excluded.word_type = '' THEN word_type ELSE excluded.word_type END RETURNING word_id;`)
	if err != nil {
		return nil, err
	}

	stmtClearDefs, err := db.Prepare(`DELETE FROM dictionary_definitions WHERE word_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtInsertDef, err := db.Prepare(`INSERT INTO dictionary_definitions (word_id, position, definition_text) VALUES (?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtCountWords, err := db.Prepare(`SELECT COUNT(*) FROM dictionary_words;`)
	if err != nil {
		return nil, err
	}

	stmtCountDefs, err := db.Prepare(`SELECT COUNT(*) FROM dictionary_definitions;`)
	if err != nil {
		return nil, err
	}

	stmtInsertRun, err := db.Prepare(`INSERT INTO generation_runs (run_id, source_word, model_order, iterations, reseeds, word_count, run_text, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtListRuns, err := db.Prepare(`SELECT run_id, source_word, model_order, iterations, reseeds, word_count, run_text, created_at FROM generation_runs ORDER BY run_id DESC LIMIT ?;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:             db,
		stmtUpsertWord: stmtUpsertWord,
		stmtClearDefs:  stmtClearDefs,
		stmtInsertDef:  stmtInsertDef,
		stmtCountWords: stmtCountWords,
		stmtCountDefs:  stmtCountDefs,
		stmtInsertRun:  stmtInsertRun,
		stmtListRuns:   stmtListRuns,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the Store.
func (s *Store) Close() {
	_ = s.stmtUpsertWord.Close()
	_ = s.stmtClearDefs.Close()
	_ = s.stmtInsertDef.Close()
	_ = s.stmtCountWords.Close()
	_ = s.stmtCountDefs.Close()
	_ = s.stmtInsertRun.Close()
	_ = s.stmtListRuns.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Save writes every entry of d. For each word in d the stored definitions
// are replaced by d's; words not in d are left alone. The whole save happens
// in one transaction.
func (s *Store) Save(ctx context.Context, d *Dictionary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction for save: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmtUpsertWord := tx.StmtContext(ctx, s.stmtUpsertWord)
	stmtClearDefs := tx.StmtContext(ctx, s.stmtClearDefs)
	stmtInsertDef := tx.StmtContext(ctx, s.stmtInsertDef)

	var defCount int
	entries := d.Entries()
	for _, e := range entries {
		var wordID int64
		if err = stmtUpsertWord.QueryRowContext(ctx, e.Name, e.Type).Scan(&wordID); err != nil {
			return fmt.Errorf("failed to upsert word '%s': %w", e.Name, err)
		}
		if _, err = stmtClearDefs.ExecContext(ctx, wordID); err != nil {
			return fmt.Errorf("failed to clear definitions of '%s': %w", e.Name, err)
		}
		for pos, def := range e.Definitions {
			if _, err = stmtInsertDef.ExecContext(ctx, wordID, pos, def); err != nil {
				return fmt.Errorf("failed to insert definition %d of '%s': %w", pos, e.Name, err)
			}
			defCount++
		}
	}

	s.logger.InfoContext(ctx, "Dictionary saved",
		slog.Int("words", len(entries)),
		slog.Int("definitions", defCount),
	)

	return tx.Commit()
}

// Load reads the whole stored dictionary.
func (s *Store) Load(ctx context.Context) (*Dictionary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.word_name, w.word_type, d.definition_text
		FROM dictionary_words w
		LEFT JOIN dictionary_definitions d ON d.word_id = w.word_id
		ORDER BY w.word_name, d.position;`)
	if err != nil {
		return nil, fmt.Errorf("could not query dictionary: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	d := New()
	for rows.Next() {
		var name, typ string
		var def sql.NullString
		if err = rows.Scan(&name, &typ, &def); err != nil {
			return nil, err
		}
		e := Entry{Name: name, Type: typ}
		if def.Valid {
			e.Definitions = []string{def.String}
		}
		d.Put(e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "Dictionary loaded", slog.Int("words", d.Len()))
	return d, nil
}

// Count returns the number of stored words and definitions.
func (s *Store) Count(ctx context.Context) (words, definitions int, err error) {
	if err = s.stmtCountWords.QueryRowContext(ctx).Scan(&words); err != nil {
		return 0, 0, err
	}
	if err = s.stmtCountDefs.QueryRowContext(ctx).Scan(&definitions); err != nil {
		return 0, 0, err
	}
	return words, definitions, nil
}

// RecordRun stores a generation result. A ULID and creation time are
// assigned when run does not carry them; the stored run is returned.
func (s *Store) RecordRun(ctx context.Context, run Run) (Run, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.ID == "" {
		run.ID = ulid.MustNew(ulid.Timestamp(run.CreatedAt), ulid.DefaultEntropy()).String()
	}

	_, err := s.stmtInsertRun.ExecContext(ctx, run.ID, run.SourceWord, run.Order, run.Iterations,
		run.Reseeds, run.Words, run.Text, run.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Run{}, fmt.Errorf("could not record run %s: %w", run.ID, err)
	}

	s.logger.DebugContext(ctx, "Generation run recorded",
		slog.String("run_id", run.ID),
		slog.Int("words", run.Words),
	)
	return run, nil
}

// Runs returns up to limit stored runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.stmtListRuns.QueryContext(ctx, limit)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var runs []Run
	for rows.Next() {
		var run Run
		var created string
		if err = rows.Scan(&run.ID, &run.SourceWord, &run.Order, &run.Iterations,
			&run.Reseeds, &run.Words, &run.Text, &created); err != nil {
			return nil, err
		}
		if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %s has a malformed timestamp: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}
