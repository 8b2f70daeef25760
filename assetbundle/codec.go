package assetbundle

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"

	"github.com/jeandeaual/mtga-setswapper/log"
)

// Magic is the signature every container starts with.
const Magic = "ABNDL\x00\x01\x00"

const flagCompressed uint32 = 1 << 0

// MaxTableSize bounds the decoded object table of a container.
const MaxTableSize = 1 << 30

// Mode of containers written where no file existed.
const defaultFileMode os.FileMode = 0o644

// ErrBadMagic is returned when a file is not a container.
var ErrBadMagic = errors.New("not an asset container")

// Codec converts containers to and from their binary form.
type Codec struct {
	// FallbackVersion is assigned to containers whose header doesn't
	// record an engine version.
	FallbackVersion string

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCodec creates a codec.
func NewCodec(fallbackVersion string) (*Codec, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't create the zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxTableSize))
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("couldn't create the zstd decoder: %w", err)
	}

	return &Codec{
		FallbackVersion: fallbackVersion,
		encoder:         encoder,
		decoder:         decoder,
	}, nil
}

// Close releases the compression resources.
func (c *Codec) Close() error {
	c.decoder.Close()
	return c.encoder.Close()
}

// Decode parses a container.
func (c *Codec) Decode(data []byte) (*Bundle, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != Magic {
		return nil, ErrBadMagic
	}

	version, err := readString(r)
	if err != nil {
		return nil, fmt.Errorf("reading engine version: %w", err)
	}
	if version == "" {
		version = c.FallbackVersion
	}

	var flags, rawSize uint32
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return nil, fmt.Errorf("reading flags: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &rawSize); err != nil {
		return nil, fmt.Errorf("reading table size: %w", err)
	}

	if rawSize > MaxTableSize {
		return nil, fmt.Errorf("object table of %d bytes exceeds the %d byte limit", rawSize, MaxTableSize)
	}

	table := data[len(data)-r.Len():]
	compressed := flags&flagCompressed != 0
	if compressed {
		table, err = c.decoder.DecodeAll(table, nil)
		if err != nil {
			return nil, fmt.Errorf("decompressing object table: %w", err)
		}
	}
	if uint32(len(table)) != rawSize {
		return nil, fmt.Errorf("object table is %d bytes, header says %d", len(table), rawSize)
	}

	objects, err := decodeTable(table)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		EngineVersion: version,
		Compressed:    compressed,
		Objects:       objects,
	}, nil
}

func decodeTable(table []byte) ([]*Object, error) {
	r := bytes.NewReader(table)

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("reading object count: %w", err)
	}

	objects := make([]*Object, 0, count)
	for i := uint32(0); i < count; i++ {
		obj := &Object{}

		if err := binary.Read(r, binary.LittleEndian, &obj.PathID); err != nil {
			return nil, fmt.Errorf("reading path ID of object %d: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &obj.Class); err != nil {
			return nil, fmt.Errorf("reading class of object %d: %w", i, err)
		}
		name, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("reading name of object %d: %w", i, err)
		}
		obj.Name = name

		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("reading size of object %d: %w", i, err)
		}
		if int64(size) > int64(r.Len()) {
			return nil, fmt.Errorf("object %d (%s) is truncated", i, obj.Name)
		}
		obj.Data = make([]byte, size)
		if _, err := io.ReadFull(r, obj.Data); err != nil {
			return nil, fmt.Errorf("reading payload of object %d: %w", i, err)
		}

		objects = append(objects, obj)
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after the object table", r.Len())
	}

	return objects, nil
}

// Encode serializes a container.
func (c *Codec) Encode(b *Bundle) ([]byte, error) {
	var table bytes.Buffer

	if err := binary.Write(&table, binary.LittleEndian, uint32(len(b.Objects))); err != nil {
		return nil, err
	}
	for _, obj := range b.Objects {
		if uint64(len(obj.Data)) > math.MaxUint32 {
			return nil, fmt.Errorf("object %s is too large", obj.Name)
		}
		if err := binary.Write(&table, binary.LittleEndian, obj.PathID); err != nil {
			return nil, err
		}
		if err := binary.Write(&table, binary.LittleEndian, obj.Class); err != nil {
			return nil, err
		}
		if err := writeString(&table, obj.Name); err != nil {
			return nil, fmt.Errorf("object %d: %w", obj.PathID, err)
		}
		if err := binary.Write(&table, binary.LittleEndian, uint32(len(obj.Data))); err != nil {
			return nil, err
		}
		table.Write(obj.Data)
	}

	var out bytes.Buffer
	out.WriteString(Magic)
	if err := writeString(&out, b.EngineVersion); err != nil {
		return nil, fmt.Errorf("engine version: %w", err)
	}

	var flags uint32
	payload := table.Bytes()
	if b.Compressed {
		flags |= flagCompressed
		payload = c.encoder.EncodeAll(payload, nil)
	}

	if err := binary.Write(&out, binary.LittleEndian, flags); err != nil {
		return nil, err
	}
	if err := binary.Write(&out, binary.LittleEndian, uint32(table.Len())); err != nil {
		return nil, err
	}
	out.Write(payload)

	return out.Bytes(), nil
}

// Load reads and decodes the container at path.
func (c *Codec) Load(fs afero.Fs, path string) (*Bundle, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	b, err := c.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	return b, nil
}

// Save encodes the container and replaces the file at path.
// The new content is written to a temporary file in the same directory, then
// renamed over the original.
func (c *Codec) Save(fs afero.Fs, path string, b *Bundle) error {
	data, err := c.Encode(b)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	return WriteFileAtomic(fs, path, data)
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// to path. An existing file keeps its permissions.
func WriteFileAtomic(fs afero.Fs, path string, data []byte) (err error) {
	dir := filepath.Dir(path)

	mode := defaultFileMode
	if info, serr := fs.Stat(path); serr == nil {
		mode = info.Mode().Perm()
	} else if !os.IsNotExist(serr) {
		return fmt.Errorf("couldn't stat %s: %w", path, serr)
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("couldn't create a temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			if rerr := fs.Remove(tmpName); rerr != nil && !os.IsNotExist(rerr) {
				log.Warnf("Couldn't remove %s: %v", tmpName, rerr)
			}
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("couldn't write %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("couldn't close %s: %w", tmpName, err)
	}
	if err = fs.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("couldn't set the mode of %s: %w", tmpName, err)
	}

	if err = fs.Rename(tmpName, path); err != nil {
		return fmt.Errorf("couldn't replace %s: %w", path, err)
	}

	return nil
}

func readString(r *bytes.Reader) (string, error) {
	var length uint16
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return "", err
	}
	if int(length) > r.Len() {
		return "", io.ErrUnexpectedEOF
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}

	return string(buf), nil
}

func writeString(w *bytes.Buffer, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("string of %d bytes is too long", len(s))
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	w.WriteString(s)
	return nil
}
