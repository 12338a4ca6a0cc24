package storage

import (
	"fmt"
	"time"
)

// SaveWords stores words not already present and returns how many were new.
// Insertion order is kept so a dictionary rebuilt from GetWords has the same
// shape as the one it was saved from.
func (s *Storage) SaveWords(words []string, source string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO words (word, source, added_at) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	inserted := 0
	for _, w := range words {
		res, err := stmt.Exec(w, source, now)
		if err != nil {
			return 0, fmt.Errorf("failed to insert word %q: %w", w, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit words: %w", err)
	}
	return inserted, nil
}

// GetWords returns all stored words in insertion order.
func (s *Storage) GetWords() ([]string, error) {
	rows, err := s.db.Query(`SELECT word FROM words ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// CountWords returns the number of stored words
func (s *Storage) CountWords() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM words`).Scan(&count)
	return count, err
}

// DeleteWord removes word and reports whether it was stored.
func (s *Storage) DeleteWord(word string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM words WHERE word = ?`, word)
	if err != nil {
		return false, fmt.Errorf("failed to delete word %q: %w", word, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
