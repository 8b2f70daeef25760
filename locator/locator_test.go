package locator

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
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

const assetDir = "/game/Downloads/AssetBundle"

func setupAssets(t *testing.T, names ...string) *Index {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(assetDir, 0o755))
	for _, name := range names {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(assetDir, name), []byte(name), 0o644))
	}

	index, err := Scan(fs, assetDir)
	require.NoError(t, err)

	return index
}

func TestParseRangeName(t *testing.T) {
	kind, start, end, err := ParseRangeName("cardart_100_199.bundle")
	assert.NoError(t, err)
	assert.Equal(t, KindArt, kind)
	assert.Equal(t, 100, start)
	assert.Equal(t, 199, end)

	kind, _, _, err = ParseRangeName("cards_1_5.bundle")
	assert.NoError(t, err)
	assert.Equal(t, KindCard, kind)

	for _, name := range []string{
		"cardart_100.bundle",
		"cardart_a_199.bundle",
		"cardart_1_2_3.bundle",
		"cardart_200_100.bundle",
		"cardart_1_2.mtga",
		"other_1_2.bundle",
	} {
		_, _, _, err = ParseRangeName(name)
		assert.Error(t, err, name)
	}
}

func TestParseSingleName(t *testing.T) {
	kind, id, err := ParseSingleName("412000_CardArt_a1b2c3.mtga")
	assert.NoError(t, err)
	assert.Equal(t, KindArt, kind)
	assert.Equal(t, 412000, id)

	kind, id, err = ParseSingleName("90210_Card_ffee.mtga")
	assert.NoError(t, err)
	assert.Equal(t, KindCard, kind)
	assert.Equal(t, 90210, id)

	_, _, err = ParseSingleName("abc_Card_ffee.mtga")
	assert.Error(t, err)
}

func TestRangeBoundaries(t *testing.T) {
	index := setupAssets(t, "cardart_100_199.bundle", "cardart_200_299.bundle")

	for id, expected := range map[int]string{
		100: "cardart_100_199.bundle",
		150: "cardart_100_199.bundle",
		199: "cardart_100_199.bundle",
		200: "cardart_200_299.bundle",
		299: "cardart_200_299.bundle",
	} {
		ref, found := index.Find(KindArt, id)
		if assert.True(t, found, id) {
			assert.Equal(t, expected, ref.Name(), id)
			assert.True(t, ref.Ranged)
		}
	}

	for _, id := range []int{99, 300} {
		_, found := index.Find(KindArt, id)
		assert.False(t, found, id)
	}

	// Ranges are per kind
	_, found := index.Find(KindCard, 150)
	assert.False(t, found)
}

func TestSingleFilePrecedence(t *testing.T) {
	index := setupAssets(t,
		"cardart_100_199.bundle",
		"150_CardArt_zzz.mtga",
		"150_CardArt_aaa.mtga",
	)

	ref, found := index.Find(KindArt, 150)
	require.True(t, found)
	assert.Equal(t, "150_CardArt_aaa.mtga", ref.Name())
	assert.False(t, ref.Ranged)

	ref, found = index.Find(KindArt, 151)
	require.True(t, found)
	assert.Equal(t, "cardart_100_199.bundle", ref.Name())
}

func TestOverlapLexicalOrder(t *testing.T) {
	index := setupAssets(t, "cardart_150_250.bundle", "cardart_100_199.bundle")

	ref, found := index.Find(KindArt, 175)
	require.True(t, found)
	assert.Equal(t, "cardart_100_199.bundle", ref.Name())
}

func TestMalformedNamesSkipped(t *testing.T) {
	index := setupAssets(t,
		"cardart_abc_199.bundle",
		"cardart_100.bundle",
		"cardart_1_2_3.bundle",
		"cardart_100_199.bundle",
		"readme.txt",
	)

	ref, found := index.Find(KindArt, 120)
	require.True(t, found)
	assert.Equal(t, "cardart_100_199.bundle", ref.Name())
}

func TestLocate(t *testing.T) {
	index := setupAssets(t,
		"cardart_400000_419999.bundle",
		"cards_90000_90999.bundle",
		"500100_CardArt_abc.mtga",
	)

	loc, err := index.Locate(card.InternalIDs{CardID: 90210, ArtID: 412000})
	require.NoError(t, err)
	assert.Equal(t, "cardart_400000_419999.bundle", loc.Art.Name())
	assert.Equal(t, "cards_90000_90999.bundle", loc.Card.Name())
	assert.False(t, loc.Shared)
	assert.Len(t, loc.Paths(), 2)

	// No card container: fall back to the art container
	loc, err = index.Locate(card.InternalIDs{CardID: 95000, ArtID: 500100})
	require.NoError(t, err)
	assert.True(t, loc.Shared)
	assert.Equal(t, loc.Art, loc.Card)
	assert.Equal(t, []string{filepath.Join(assetDir, "500100_CardArt_abc.mtga")}, loc.Paths())

	_, err = index.Locate(card.InternalIDs{CardID: 90210, ArtID: 1})
	assert.ErrorIs(t, err, ErrNoArtContainer)
}

func TestScanMissingFolder(t *testing.T) {
	_, err := Scan(afero.NewMemMapFs(), "/nope")
	assert.Error(t, err)
}
