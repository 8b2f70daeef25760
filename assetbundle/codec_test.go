package assetbundle

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"math"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeandeaual/mtga-setswapper/log"
)

func init() {
	logger := zap.NewExample()
	log.SetLogger(logger.Sugar())
}

func newCodec(t *testing.T) *Codec {
	codec, err := NewCodec("2022.3.42f1")
	require.NoError(t, err)
	t.Cleanup(func() { codec.Close() })
	return codec
}

func sampleBundle(t *testing.T, compressed bool) *Bundle {
	b := &Bundle{EngineVersion: "2021.3.14f1", Compressed: compressed}

	texture := b.Add(ClassTexture2D, "412000_AIF", nil)
	require.NoError(t, texture.SetTexture(&Texture{
		Width:  2,
		Height: 1,
		Format: FormatRGB24,
		Pixels: []byte{1, 2, 3, 4, 5, 6},
	}))

	title := b.Add(ClassTextAsset, "Card_Title_90210", nil)
	require.NoError(t, title.SetText("Lightning Bolt"))

	b.Add(ClassID(114), "MonoBehaviour", []byte{0xde, 0xad, 0xbe, 0xef, 0x00})

	return b
}

func TestRoundTrip(t *testing.T) {
	codec := newCodec(t)

	for _, compressed := range []bool{false, true} {
		original := sampleBundle(t, compressed)

		data, err := codec.Encode(original)
		require.NoError(t, err)

		decoded, err := codec.Decode(data)
		require.NoError(t, err)

		assert.Equal(t, original, decoded)

		// Re-encoding an unmodified container gives the same bytes
		again, err := codec.Encode(decoded)
		require.NoError(t, err)
		assert.Equal(t, data, again)
	}
}

func TestUnknownClassPreserved(t *testing.T) {
	codec := newCodec(t)

	data, err := codec.Encode(sampleBundle(t, true))
	require.NoError(t, err)

	decoded, err := codec.Decode(data)
	require.NoError(t, err)

	others := decoded.ObjectsOf(ClassID(114))
	require.Len(t, others, 1)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef, 0x00}, others[0].Data)
	assert.Equal(t, "Class(114)", others[0].Class.String())
}

func TestFallbackVersion(t *testing.T) {
	codec := newCodec(t)

	b := sampleBundle(t, false)
	b.EngineVersion = ""

	data, err := codec.Encode(b)
	require.NoError(t, err)

	decoded, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "2022.3.42f1", decoded.EngineVersion)
}

func TestDecodeErrors(t *testing.T) {
	codec := newCodec(t)

	_, err := codec.Decode([]byte("UnityFS\x00"))
	assert.ErrorIs(t, err, ErrBadMagic)

	_, err = codec.Decode(nil)
	assert.ErrorIs(t, err, ErrBadMagic)

	data, err := codec.Encode(sampleBundle(t, false))
	require.NoError(t, err)

	_, err = codec.Decode(data[:len(data)-3])
	assert.Error(t, err)
}

func TestDecodeTableTooLarge(t *testing.T) {
	codec := newCodec(t)

	var buf bytes.Buffer
	buf.WriteString(Magic)
	require.NoError(t, writeString(&buf, "2022.3.42f1"))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, flagCompressed))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(math.MaxUint32)))
	buf.WriteString("not zstd")

	_, err := codec.Decode(buf.Bytes())
	assert.ErrorContains(t, err, "exceeds")
}

func TestTextureSize(t *testing.T) {
	b := &Bundle{}
	obj := b.Add(ClassTexture2D, "odd", []byte{
		8, 0, 0, 0,
		4, 0, 0, 0,
		99, 0, 0, 0,
	})

	width, height, err := obj.TextureSize()
	require.NoError(t, err)
	assert.Equal(t, 8, width)
	assert.Equal(t, 4, height)

	_, err = obj.Texture()
	assert.ErrorContains(t, err, "unsupported texture format 99")

	short := b.Add(ClassTexture2D, "short", []byte{1, 2})
	_, _, err = short.TextureSize()
	assert.Error(t, err)
}

func TestTextureFromImage(t *testing.T) {
	b := sampleBundle(t, false)

	textures := b.ObjectsOf(ClassTexture2D)
	require.Len(t, textures, 1)

	tex, err := textures[0].Texture()
	require.NoError(t, err)
	assert.Equal(t, 2, tex.Area())

	assert.Equal(t, []byte{4, 5, 6}, tex.Pixels[3:6])

	replacement := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	replacement.SetNRGBA(2, 1, color.NRGBA{R: 9, G: 8, B: 7, A: 0x80})
	require.NoError(t, textures[0].SetTexture(TextureFromImage(replacement)))

	tex, err = textures[0].Texture()
	require.NoError(t, err)
	assert.Equal(t, 3, tex.Width)
	assert.Equal(t, 2, tex.Height)
	assert.Equal(t, FormatRGBA32, tex.Format)

	// Pixel (2, 1) of a 3 pixel wide RGBA32 texture
	assert.Equal(t, []byte{9, 8, 7, 0x80}, tex.Pixels[20:24])
}

func TestRecordClassMismatch(t *testing.T) {
	b := sampleBundle(t, false)

	title, ok := b.Find(ClassTextAsset, "Card_Title_90210")
	require.True(t, ok)

	_, err := title.Texture()
	assert.Error(t, err)

	text, err := title.Text()
	require.NoError(t, err)
	assert.Equal(t, "Lightning Bolt", text)

	_, ok = b.Find(ClassTexture2D, "Card_Title_90210")
	assert.False(t, ok)
}

func TestSaveAtomic(t *testing.T) {
	codec := newCodec(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/assets", 0o755))

	path := "/assets/412000_CardArt_abc.mtga"
	require.NoError(t, afero.WriteFile(fs, path, []byte("old"), 0o644))

	b := sampleBundle(t, true)
	require.NoError(t, codec.Save(fs, path, b))

	loaded, err := codec.Load(fs, path)
	require.NoError(t, err)
	assert.Equal(t, b, loaded)

	entries, err := afero.ReadDir(fs, "/assets")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "412000_CardArt_abc.mtga", entries[0].Name())
}

func TestSaveKeepsMode(t *testing.T) {
	codec := newCodec(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/assets", 0o755))

	existing := "/assets/cards_1_2.bundle"
	require.NoError(t, afero.WriteFile(fs, existing, []byte("old"), 0o664))
	require.NoError(t, codec.Save(fs, existing, sampleBundle(t, false)))

	info, err := fs.Stat(existing)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o664), info.Mode().Perm())

	created := "/assets/cards_3_4.bundle"
	require.NoError(t, codec.Save(fs, created, sampleBundle(t, false)))

	info, err = fs.Stat(created)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestLoadNotAContainer(t *testing.T) {
	codec := newCodec(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/assets/cards_1_2.bundle", []byte("garbage data"), 0o644))

	_, err := codec.Load(fs, "/assets/cards_1_2.bundle")
	assert.ErrorIs(t, err, ErrBadMagic)
}
