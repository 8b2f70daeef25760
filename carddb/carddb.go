// Package carddb reads the card database shipped with the game client.
package carddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	_ "modernc.org/sqlite"

	"github.com/jeandeaual/mtga-setswapper/card"
	"github.com/jeandeaual/mtga-setswapper/log"
)

var (
	// ErrNotFound is returned when no row matches a printing.
	ErrNotFound = errors.New("card not found in the local database")
	// ErrNoDatabase is returned when no database file can be found.
	ErrNoDatabase = errors.New("couldn't find the card database file")
)

// Folders (relative to the data path) that can contain the card database.
var candidateFolders = []string{
	filepath.Join("Downloads", "Data"),
	filepath.Join("Downloads", "Raw"),
}

// File name patterns of the card database.
var candidatePatterns = []string{
	"data_cards_*.mtga",
	"Raw_CardDatabase_*.mtga",
}

const lookupQuery = `SELECT GrpId, ArtId FROM Cards
WHERE ExpansionCode = ? AND CollectorNumber = ?
ORDER BY GrpId
LIMIT 1`

// FindDatabase returns the most recently modified card database file found
// in the candidate folders of dataPath.
func FindDatabase(dataPath string) (string, error) {
	var (
		newest     string
		newestInfo os.FileInfo
	)

	for _, folder := range candidateFolders {
		dir := filepath.Join(dataPath, folder)

		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			log.Debugf("Database folder %s doesn't exist", dir)
			continue
		} else if err != nil {
			return "", fmt.Errorf("couldn't list %s: %w", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !matchesAny(entry.Name(), candidatePatterns) {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				return "", fmt.Errorf("couldn't stat %s: %w", entry.Name(), err)
			}

			if newestInfo == nil || info.ModTime().After(newestInfo.ModTime()) {
				newest = filepath.Join(dir, entry.Name())
				newestInfo = info
			}
		}
	}

	if newestInfo == nil {
		return "", fmt.Errorf("%w in %s", ErrNoDatabase, dataPath)
	}

	log.Debugf("Using card database %s", newest)

	return newest, nil
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// DB is a read-only handle on the card database.
type DB struct {
	db *sql.DB
}

// Open opens the card database at path in read-only mode.
func Open(ctx context.Context, path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("couldn't open card database %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening card database: %w", err)
	}
	// A single connection so that the pragma below applies to every query
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to card database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setting pragma: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Lookup returns the internal identifiers of a printing.
func (d *DB) Lookup(ctx context.Context, key card.PrintingKey) (card.InternalIDs, error) {
	var ids card.InternalIDs

	err := d.db.QueryRowContext(
		ctx,
		lookupQuery,
		card.NormalizeExpansionCode(key.ExpansionCode),
		key.CollectorNumber,
	).Scan(&ids.CardID, &ids.ArtID)
	if errors.Is(err, sql.ErrNoRows) {
		return ids, fmt.Errorf("%w: %s", ErrNotFound, key)
	} else if err != nil {
		return ids, fmt.Errorf("querying %s: %w", key, err)
	}

	return ids, nil
}
