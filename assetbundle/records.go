package assetbundle

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"unicode/utf8"
)

// TextureFormat is the pixel layout of a texture.
type TextureFormat uint32

const (
	// FormatRGB24 stores 3 bytes per pixel.
	FormatRGB24 TextureFormat = 3
	// FormatRGBA32 stores 4 bytes per pixel.
	FormatRGBA32 TextureFormat = 4
)

func (f TextureFormat) bytesPerPixel() (int, error) {
	switch f {
	case FormatRGB24:
		return 3, nil
	case FormatRGBA32:
		return 4, nil
	default:
		return 0, fmt.Errorf("unsupported texture format %d", uint32(f))
	}
}

const textureHeaderSize = 12

// Texture is the decoded payload of a Texture2D object.
type Texture struct {
	Width  int
	Height int
	Format TextureFormat
	Pixels []byte
}

// Area returns the pixel area of the texture.
func (t *Texture) Area() int {
	return t.Width * t.Height
}

// TextureSize reads the dimensions of a Texture2D object without checking
// its pixel data.
func (o *Object) TextureSize() (width, height int, err error) {
	if o.Class != ClassTexture2D {
		return 0, 0, fmt.Errorf("object %s is a %s, not a texture", o.Name, o.Class)
	}
	if len(o.Data) < textureHeaderSize {
		return 0, 0, fmt.Errorf("texture %s: truncated header", o.Name)
	}

	return int(binary.LittleEndian.Uint32(o.Data[0:4])), int(binary.LittleEndian.Uint32(o.Data[4:8])), nil
}

// Texture decodes the payload of a Texture2D object.
func (o *Object) Texture() (*Texture, error) {
	width, height, err := o.TextureSize()
	if err != nil {
		return nil, err
	}

	tex := &Texture{
		Width:  width,
		Height: height,
		Format: TextureFormat(binary.LittleEndian.Uint32(o.Data[8:12])),
		Pixels: o.Data[textureHeaderSize:],
	}

	bpp, err := tex.Format.bytesPerPixel()
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", o.Name, err)
	}
	if expected := tex.Width * tex.Height * bpp; len(tex.Pixels) != expected {
		return nil, fmt.Errorf("texture %s: expected %d bytes of pixel data, got %d", o.Name, expected, len(tex.Pixels))
	}

	return tex, nil
}

// SetTexture replaces the payload of a Texture2D object.
func (o *Object) SetTexture(tex *Texture) error {
	if o.Class != ClassTexture2D {
		return fmt.Errorf("object %s is a %s, not a texture", o.Name, o.Class)
	}

	bpp, err := tex.Format.bytesPerPixel()
	if err != nil {
		return err
	}
	if len(tex.Pixels) != tex.Width*tex.Height*bpp {
		return errors.New("pixel data doesn't match the texture dimensions")
	}

	data := make([]byte, textureHeaderSize+len(tex.Pixels))
	binary.LittleEndian.PutUint32(data[0:4], uint32(tex.Width))
	binary.LittleEndian.PutUint32(data[4:8], uint32(tex.Height))
	binary.LittleEndian.PutUint32(data[8:12], uint32(tex.Format))
	copy(data[textureHeaderSize:], tex.Pixels)
	o.Data = data

	return nil
}

// TextureFromImage creates an RGBA32 texture from an image.
func TextureFromImage(img *image.NRGBA) *Texture {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	pixels := make([]byte, 0, width*height*4)
	for y := 0; y < height; y++ {
		offset := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		pixels = append(pixels, img.Pix[offset:offset+width*4]...)
	}

	return &Texture{
		Width:  width,
		Height: height,
		Format: FormatRGBA32,
		Pixels: pixels,
	}
}

// Text decodes the payload of a TextAsset object.
func (o *Object) Text() (string, error) {
	if o.Class != ClassTextAsset {
		return "", fmt.Errorf("object %s is a %s, not a text asset", o.Name, o.Class)
	}
	if !utf8.Valid(o.Data) {
		return "", fmt.Errorf("text asset %s is not valid UTF-8", o.Name)
	}
	return string(o.Data), nil
}

// SetText replaces the payload of a TextAsset object.
func (o *Object) SetText(text string) error {
	if o.Class != ClassTextAsset {
		return fmt.Errorf("object %s is a %s, not a text asset", o.Name, o.Class)
	}
	o.Data = []byte(text)
	return nil
}
