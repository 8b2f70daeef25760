package carddb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeandeaual/mtga-setswapper/card"
	"github.com/jeandeaual/mtga-setswapper/log"
)

func init() {
	logger := zap.NewExample()
	log.SetLogger(logger.Sugar())
}

func createDatabase(t *testing.T, path string) {
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE Cards (
		GrpId INTEGER PRIMARY KEY,
		ArtId INTEGER NOT NULL,
		ExpansionCode TEXT NOT NULL,
		CollectorNumber TEXT NOT NULL
	)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO Cards (GrpId, ArtId, ExpansionCode, CollectorNumber) VALUES
		(90210, 412000, 'OM1', '12'),
		(90300, 412100, 'OM1', '91a'),
		(90400, 412200, 'SPM', '12'),
		(91000, 500000, 'DUP', '1'),
		(90999, 499999, 'DUP', '1')`)
	require.NoError(t, err)
}

func TestLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_cards_test.mtga")
	createDatabase(t, path)

	ctx := context.Background()
	db, err := Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	ids, err := db.Lookup(ctx, card.PrintingKey{ExpansionCode: "om1", CollectorNumber: "12"})
	assert.NoError(t, err)
	assert.Equal(t, card.InternalIDs{CardID: 90210, ArtID: 412000}, ids)

	ids, err = db.Lookup(ctx, card.PrintingKey{ExpansionCode: "OM1", CollectorNumber: "91a"})
	assert.NoError(t, err)
	assert.Equal(t, card.InternalIDs{CardID: 90300, ArtID: 412100}, ids)

	// Several rows: the lowest GrpId wins
	ids, err = db.Lookup(ctx, card.PrintingKey{ExpansionCode: "DUP", CollectorNumber: "1"})
	assert.NoError(t, err)
	assert.Equal(t, 90999, ids.CardID)

	_, err = db.Lookup(ctx, card.PrintingKey{ExpansionCode: "ABC", CollectorNumber: "1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.mtga"))
	assert.Error(t, err)
}

func TestFindDatabase(t *testing.T) {
	dataPath := t.TempDir()

	_, err := FindDatabase(dataPath)
	assert.ErrorIs(t, err, ErrNoDatabase)

	dataDir := filepath.Join(dataPath, "Downloads", "Data")
	rawDir := filepath.Join(dataPath, "Downloads", "Raw")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.MkdirAll(rawDir, 0o755))

	old := filepath.Join(dataDir, "data_cards_old.mtga")
	newer := filepath.Join(rawDir, "Raw_CardDatabase_new.mtga")
	ignored := filepath.Join(dataDir, "data_loc_new.mtga")
	for _, path := range []string{old, newer, ignored} {
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	now := time.Now()
	require.NoError(t, os.Chtimes(old, now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(newer, now, now))
	require.NoError(t, os.Chtimes(ignored, now.Add(time.Hour), now.Add(time.Hour)))

	path, err := FindDatabase(dataPath)
	assert.NoError(t, err)
	assert.Equal(t, newer, path)
}
