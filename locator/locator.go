// Package locator finds the container files holding the records of a card.
package locator

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/jeandeaual/mtga-setswapper/card"
	"github.com/jeandeaual/mtga-setswapper/log"
)

// ErrNoArtContainer is returned when no container holds the art of a card.
var ErrNoArtContainer = errors.New("couldn't locate the art container")

// Ref is a container file that holds a given record.
type Ref struct {
	// Path of the container file.
	Path string
	Kind Kind
	// Ranged is set when the container is a ranged bundle.
	Ranged bool
	// Start and End are the inclusive bounds of a ranged bundle. For an
	// individually-packaged record, both are the record ID.
	Start int
	End   int
}

// Name returns the file name of the container.
func (r Ref) Name() string {
	return filepath.Base(r.Path)
}

// Contains reports whether the container holds the record id.
func (r Ref) Contains(id int) bool {
	return r.Start <= id && id <= r.End
}

// Location is the pair of containers holding the records of a card.
type Location struct {
	Art  Ref
	Card Ref
	// Shared is set when the metadata records are assumed to live in the art
	// container.
	Shared bool
}

// Paths returns the distinct container paths of the location.
func (l Location) Paths() []string {
	if l.Shared || l.Art.Path == l.Card.Path {
		return []string{l.Art.Path}
	}
	return []string{l.Art.Path, l.Card.Path}
}

// Index is a snapshot of the containers of an asset folder.
type Index struct {
	singles map[Kind][]Ref
	ranges  map[Kind][]Ref
}

// Scan lists the containers of dir. Files not following one of the naming
// schemes are ignored.
func Scan(fs afero.Fs, dir string) (*Index, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("couldn't list the asset folder %s: %w", dir, err)
	}

	index := &Index{
		singles: make(map[Kind][]Ref),
		ranges:  make(map[Kind][]Ref),
	}

	// afero.ReadDir sorts by name, which makes the overlap resolution
	// deterministic: the lexically first container wins.
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		name := info.Name()
		path := filepath.Join(dir, name)

		for kind := range namings {
			if matchPattern(singlePatterns[kind], name) {
				parsedKind, id, err := ParseSingleName(name)
				if err != nil {
					log.Debugf("Ignoring malformed record file: %v", err)
					continue
				}
				if parsedKind != kind {
					continue
				}
				index.singles[kind] = append(index.singles[kind], Ref{
					Path:  path,
					Kind:  kind,
					Start: id,
					End:   id,
				})
			}

			if matchPattern(rangePatterns[kind], name) {
				parsedKind, start, end, err := ParseRangeName(name)
				if err != nil {
					log.Debugf("Ignoring malformed bundle: %v", err)
					continue
				}
				if parsedKind != kind {
					continue
				}
				index.ranges[kind] = append(index.ranges[kind], Ref{
					Path:   path,
					Kind:   kind,
					Ranged: true,
					Start:  start,
					End:    end,
				})
			}
		}
	}

	for kind := range namings {
		sortRefs(index.singles[kind])
		sortRefs(index.ranges[kind])
		warnOverlaps(index.ranges[kind])
	}

	log.Debugw(
		"Scanned asset folder",
		"folder", dir,
		"artFiles", len(index.singles[KindArt]),
		"artBundles", len(index.ranges[KindArt]),
		"cardFiles", len(index.singles[KindCard]),
		"cardBundles", len(index.ranges[KindCard]),
	)

	return index, nil
}

func matchPattern(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

func sortRefs(refs []Ref) {
	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].Name() < refs[j].Name()
	})
}

func warnOverlaps(refs []Ref) {
	for i := 0; i < len(refs); i++ {
		for j := i + 1; j < len(refs); j++ {
			if refs[i].Start <= refs[j].End && refs[j].Start <= refs[i].End {
				log.Warnw(
					"Overlapping bundle ranges, the first one will be used",
					"first", refs[i].Name(),
					"second", refs[j].Name(),
				)
			}
		}
	}
}

// Find returns the container holding the record id of the given kind.
// Individually-packaged records take precedence over ranged bundles.
func (idx *Index) Find(kind Kind, id int) (Ref, bool) {
	for _, ref := range idx.singles[kind] {
		if ref.Start == id {
			return ref, true
		}
	}

	for _, ref := range idx.ranges[kind] {
		if ref.Contains(id) {
			return ref, true
		}
	}

	return Ref{}, false
}

// Locate returns the containers holding the art and metadata of a card.
// When no metadata container is found, the art container is assumed to hold
// the metadata as well.
func (idx *Index) Locate(ids card.InternalIDs) (Location, error) {
	var loc Location

	art, found := idx.Find(KindArt, ids.ArtID)
	if !found {
		return loc, fmt.Errorf("%w for %s", ErrNoArtContainer, ids)
	}
	loc.Art = art

	log.Debugf("Found art container %s for art ID %d", art.Name(), ids.ArtID)

	meta, found := idx.Find(KindCard, ids.CardID)
	if !found {
		log.Warnf("Couldn't find a separate card container for card ID %d, assuming the data is in %s", ids.CardID, art.Name())
		loc.Card = art
		loc.Shared = true
		return loc, nil
	}
	loc.Card = meta

	log.Debugf("Found card container %s for card ID %d", meta.Name(), ids.CardID)

	return loc, nil
}
