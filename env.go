// Package setswapper replaces the art and names of cards in a local game
// installation according to a swap plan.
package setswapper

import (
	"context"
	"errors"

	scryfall "github.com/BlueMonday/go-scryfall"
	"github.com/spf13/afero"

	"github.com/jeandeaual/mtga-setswapper/card"
	"github.com/jeandeaual/mtga-setswapper/install"
)

// Resolver maps a printing to the internal identifiers of the client.
// It is implemented by *carddb.DB.
type Resolver interface {
	Lookup(ctx context.Context, key card.PrintingKey) (card.InternalIDs, error)
}

// MetadataService is the remote card metadata service.
// It is implemented by *metadata.Client.
type MetadataService interface {
	SearchByName(ctx context.Context, name string) (scryfall.Card, error)
	SearchSet(ctx context.Context, setCode string) ([]scryfall.Card, error)
	Fetch(ctx context.Context, locator string) (scryfall.Card, error)
	Download(ctx context.Context, fs afero.Fs, url, path string) error
}

// Env is everything a run needs to know about its surroundings.
type Env struct {
	Fs     afero.Fs
	Layout install.Layout
	// BackupDir holds the pristine copies of the containers.
	BackupDir string
	// WorkDir is the parent of the temporary folder receiving the
	// downloaded images.
	WorkDir  string
	Resolver Resolver
	Metadata MetadataService
	// EngineVersion is stamped into containers that don't record one.
	EngineVersion string
	// ArtOnly leaves display names untouched.
	ArtOnly  bool
	Observer Observer
}

func (e *Env) emit(event Event) {
	if e.Observer != nil {
		e.Observer(event)
	}
}

func (e *Env) validate(needResolver bool) error {
	if e.Fs == nil {
		return errors.New("no filesystem set")
	}
	if e.Layout.AssetDir == "" {
		return errors.New("no asset folder set")
	}
	if e.BackupDir == "" {
		return errors.New("no backup folder set")
	}
	if needResolver && e.Resolver == nil {
		return errors.New("no card database set")
	}
	if needResolver && e.Metadata == nil {
		return errors.New("no metadata service set")
	}
	if needResolver && e.WorkDir == "" {
		return errors.New("no work folder set")
	}
	return nil
}
