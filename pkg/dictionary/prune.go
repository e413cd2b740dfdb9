package dictionary

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// Prune removes every entry for which keep returns false and returns the
// removed names in sorted order.
func (d *Dictionary) Prune(keep func(Entry) bool) []string {
	var removed []string
	for _, name := range d.Names() {
		if !keep(d.entries[name]) {
			delete(d.entries, name)
			removed = append(removed, name)
		}
	}
	return removed
}

// Delete removes the named words and all of their definitions from the
// store. Names are normalized; unknown names are ignored. It returns the
// number of words removed.
func (s *Store) Delete(ctx context.Context, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("could not begin transaction for delete: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	seen := make(map[string]struct{}, len(names))
	keys := make([]interface{}, 0, len(names))
	for _, name := range names {
		key := NormalizeName(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	var wordIDs []interface{}
	for _, batch := range batches(keys) {
		query := fmt.Sprintf("SELECT word_id FROM dictionary_words WHERE word_name IN (?%s)", strings.Repeat(",?", len(batch)-1))
		rows, err := tx.QueryContext(ctx, query, batch...)
		if err != nil {
			return 0, fmt.Errorf("failed to look up words to delete: %w", err)
		}
		for rows.Next() {
			var id int64
			if err = rows.Scan(&id); err != nil {
				_ = rows.Close()
				return 0, fmt.Errorf("failed to scan word id: %w", err)
			}
			wordIDs = append(wordIDs, id)
		}
		_ = rows.Close()
		if err = rows.Err(); err != nil {
			return 0, fmt.Errorf("error after iterating word rows: %w", err)
		}
	}

	// Definitions first, then the words they belong to.
	if err = batchDelete(ctx, tx, "dictionary_definitions", "word_id", wordIDs); err != nil {
		return 0, fmt.Errorf("failed to delete definitions: %w", err)
	}
	if err = batchDelete(ctx, tx, "dictionary_words", "word_id", wordIDs); err != nil {
		return 0, fmt.Errorf("failed to delete words: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "Words deleted",
		slog.Int("requested", len(names)),
		slog.Int("words_removed", len(wordIDs)),
	)
	return len(wordIDs), nil
}

// SQLite's default variable limit is 999, so around half that is good
const batchSize = 500

func batches(args []interface{}) [][]interface{} {
	var out [][]interface{}
	for i := 0; i < len(args); i += batchSize {
		end := i + batchSize
		if end > len(args) {
			end = len(args)
		}
		out = append(out, args[i:end])
	}
	return out
}

// batchDelete deletes rows whose column is in ids, in batches that stay
// below the SQL variable limit.
func batchDelete(ctx context.Context, tx *sql.Tx, table, column string, ids []interface{}) error {
	for _, batch := range batches(ids) {
		query := fmt.Sprintf("DELETE FROM %s WHERE %s IN (?%s)", table, column, strings.Repeat(",?", len(batch)-1))
		if _, err := tx.ExecContext(ctx, query, batch...); err != nil {
			return err
		}
	}
	return nil
}
