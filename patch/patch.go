// Package patch replaces the art and display name of a card inside its
// containers.
package patch

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"

	"github.com/jeandeaual/mtga-setswapper/assetbundle"
	"github.com/jeandeaual/mtga-setswapper/card"
	"github.com/jeandeaual/mtga-setswapper/locator"
	"github.com/jeandeaual/mtga-setswapper/log"
)

// ErrNoTexture is returned when a container doesn't hold any image record.
var ErrNoTexture = errors.New("no texture found")

// Request describes the changes to apply to one card.
type Request struct {
	IDs card.InternalIDs
	// Image is the replacement art.
	Image image.Image
	// Chapter is set for wide multi-panel frames. The art is then
	// letterboxed to the dimensions of the existing texture.
	Chapter bool
	// Name is the replacement display name. Nil leaves the name untouched.
	Name *string
}

// Result is the outcome of Apply.
type Result struct {
	// Texture is the internal name of the replaced texture.
	Texture      string
	NameReplaced bool
	// Written lists the container files that were rewritten.
	Written []string
}

// Codec loads and saves the object graph of a container file.
// *assetbundle.Codec implements it.
type Codec interface {
	Load(fs afero.Fs, path string) (*assetbundle.Bundle, error)
	Save(fs afero.Fs, path string, b *assetbundle.Bundle) error
}

// Patcher applies requests to the containers of an asset folder.
type Patcher struct {
	fs    afero.Fs
	codec Codec
}

// New creates a patcher.
func New(fs afero.Fs, codec Codec) *Patcher {
	return &Patcher{fs: fs, codec: codec}
}

// Apply replaces the art and optionally the name of a card.
// When the art and metadata records share a container, both changes are made
// to the same object graph and the file is written once.
func (p *Patcher) Apply(loc locator.Location, req Request) (*Result, error) {
	result := &Result{}

	artBundle, err := p.codec.Load(p.fs, loc.Art.Path)
	if err != nil {
		return result, fmt.Errorf("couldn't load %s: %w", loc.Art.Name(), err)
	}

	texture, err := ReplaceArt(artBundle, req.Image, req.Chapter)
	if err != nil {
		return result, fmt.Errorf("%s: %w", loc.Art.Name(), err)
	}
	result.Texture = texture

	shared := loc.Shared || loc.Art.Path == loc.Card.Path

	if shared && req.Name != nil {
		result.NameReplaced = p.replaceName(artBundle, loc.Art, req.IDs.CardID, *req.Name)
	}

	if err := p.codec.Save(p.fs, loc.Art.Path, artBundle); err != nil {
		return result, err
	}
	result.Written = append(result.Written, loc.Art.Path)

	log.Infof("Art replaced in %s", loc.Art.Name())

	if shared || req.Name == nil {
		return result, nil
	}

	cardBundle, err := p.codec.Load(p.fs, loc.Card.Path)
	if err != nil {
		return result, fmt.Errorf("couldn't load %s: %w", loc.Card.Name(), err)
	}

	if !p.replaceName(cardBundle, loc.Card, req.IDs.CardID, *req.Name) {
		return result, nil
	}
	result.NameReplaced = true

	if err := p.codec.Save(p.fs, loc.Card.Path, cardBundle); err != nil {
		return result, err
	}
	result.Written = append(result.Written, loc.Card.Path)

	return result, nil
}

func (p *Patcher) replaceName(bundle *assetbundle.Bundle, ref locator.Ref, cardID int, name string) bool {
	replaced, err := ReplaceName(bundle, cardID, name)
	if err != nil {
		log.Warnf("Couldn't replace the name in %s: %v", ref.Name(), err)
		return false
	}
	if !replaced {
		log.Warnf("No %s record in %s, keeping the current name", card.TitleRecordName(cardID), ref.Name())
		return false
	}

	log.Infof("Name replaced in %s", ref.Name())

	return true
}

// MainTexture returns the texture with the largest pixel area. The main art
// isn't addressed by ID: a container can hold several resolutions or
// auxiliary images, and the biggest one is assumed to be the art shown in
// game. Ties go to the first texture in container order.
// Candidates are ranked by their header dimensions, so an unreadable largest
// texture is an error rather than a reason to pick a smaller one.
func MainTexture(bundle *assetbundle.Bundle) (*assetbundle.Object, *assetbundle.Texture, error) {
	var (
		mainObject *assetbundle.Object
		mainArea   int
	)

	for _, obj := range bundle.ObjectsOf(assetbundle.ClassTexture2D) {
		width, height, err := obj.TextureSize()
		if err != nil {
			log.Warnf("Skipping texture without a header: %v", err)
			continue
		}
		if mainObject == nil || width*height > mainArea {
			mainObject = obj
			mainArea = width * height
		}
	}

	if mainObject == nil {
		return nil, nil, ErrNoTexture
	}

	tex, err := mainObject.Texture()
	if err != nil {
		return nil, nil, err
	}

	return mainObject, tex, nil
}

// ReplaceArt replaces the main texture of a container with img and returns
// the name of the texture record.
func ReplaceArt(bundle *assetbundle.Bundle, img image.Image, chapter bool) (string, error) {
	obj, tex, err := MainTexture(bundle)
	if err != nil {
		return "", err
	}

	var replacement *image.NRGBA
	if chapter {
		replacement = Letterbox(img, tex.Width, tex.Height)
		log.Debugf("Letterboxed the art to %dx%d", tex.Width, tex.Height)
	} else {
		replacement = imaging.Clone(img)
	}

	if err := obj.SetTexture(assetbundle.TextureFromImage(replacement)); err != nil {
		return "", fmt.Errorf("couldn't replace texture %s: %w", obj.Name, err)
	}

	return obj.Name, nil
}

// ReplaceName sets the display name of a card. It returns false when the
// container doesn't hold the title record of the card.
func ReplaceName(bundle *assetbundle.Bundle, cardID int, name string) (bool, error) {
	obj, found := bundle.Find(assetbundle.ClassTextAsset, card.TitleRecordName(cardID))
	if !found {
		return false, nil
	}

	if err := obj.SetText(name); err != nil {
		return false, err
	}

	return true, nil
}
