package database

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"heartbridge/internal/logger"
)

// SeedBadWords fetches the moderation word list from url when the table is empty
func (db *DB) SeedBadWords(ctx context.Context, url string) error {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM bad_words"); err != nil {
		return fmt.Errorf("failed to check bad words count: %w", err)
	}

	if count > 0 {
		logger.Info().Int("count", count).Msg("Bad words filter already populated")
		return nil
	}
	if url == "" {
		return nil
	}

	words, err := FetchBadWords(ctx, url)
	if err != nil {
		return err
	}
	added, err := db.AddBadWords(ctx, words...)
	if err != nil {
		return err
	}

	logger.Info().Int("count", added).Msg("Bad words filter populated")
	return nil
}

// FetchBadWords downloads a newline separated word list
func FetchBadWords(ctx context.Context, url string) ([]string, error) {
	logger.Info().Str("url", url).Msg("Downloading bad words list")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build bad words request: %w", err)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download bad words list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status code from bad words URL: %d", resp.StatusCode)
	}
	return ReadBadWords(resp.Body)
}

// ReadBadWords parses one word per line, lowercased, skipping blanks
func ReadBadWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if word := strings.TrimSpace(strings.ToLower(scanner.Text())); word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading bad words: %w", err)
	}
	return words, nil
}

// LoadBadWords inserts one word per line from r, skipping blanks and duplicates
func (db *DB) LoadBadWords(ctx context.Context, r io.Reader) (int, error) {
	words, err := ReadBadWords(r)
	if err != nil {
		return 0, err
	}
	return db.AddBadWords(ctx, words...)
}

// AddBadWords inserts words into the filter and returns how many were new
func (db *DB) AddBadWords(ctx context.Context, words ...string) (int, error) {
	added := 0
	err := db.WithTx(ctx, func(tx *Tx) error {
		for _, word := range words {
			word = strings.TrimSpace(strings.ToLower(word))
			if word == "" {
				continue
			}
			var exists int
			if err := tx.GetContext(ctx, &exists, "SELECT COUNT(*) FROM bad_words WHERE word = ?", word); err != nil {
				return err
			}
			if exists > 0 {
				continue
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO bad_words (word) VALUES (?)", word); err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add bad words: %w", err)
	}
	return added, nil
}

// ValidateWords checks a list of words against the bad words filter.
// Returns the list of bad words found.
func (db *DB) ValidateWords(ctx context.Context, words []string) ([]string, error) {
	if len(words) == 0 {
		return nil, nil
	}

	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = strings.TrimSpace(strings.ToLower(w))
	}

	query, args, err := sqlx.In("SELECT word FROM bad_words WHERE word IN (?) ORDER BY word", lowered)
	if err != nil {
		return nil, fmt.Errorf("failed to build bad word query: %w", err)
	}

	var found []string
	if err := db.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, fmt.Errorf("failed to check bad words: %w", err)
	}

	if len(found) > 0 {
		logger.Debug().Strs("words", found).Msg("Bad words detected")
	}
	return found, nil
}
