package setswapper

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"path"
	"path/filepath"
	"strconv"

	scryfall "github.com/BlueMonday/go-scryfall"
	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/jeandeaual/mtga-setswapper/assetbundle"
	"github.com/jeandeaual/mtga-setswapper/backup"
	"github.com/jeandeaual/mtga-setswapper/card"
	"github.com/jeandeaual/mtga-setswapper/carddb"
	"github.com/jeandeaual/mtga-setswapper/locator"
	"github.com/jeandeaual/mtga-setswapper/log"
	"github.com/jeandeaual/mtga-setswapper/metadata"
	"github.com/jeandeaual/mtga-setswapper/patch"
	"github.com/jeandeaual/mtga-setswapper/plan"
)

var errMissingTarget = errors.New("the entry has no target locator")

// run holds the state shared by the entries of one Apply call.
type run struct {
	env     *Env
	index   *locator.Index
	store   *backup.Store
	patcher *patch.Patcher
	workDir string
}

// Apply executes a swap plan. Entries are processed one after the other;
// an entry that can't be applied is recorded in the report and the run
// continues. The context is checked between entries: once it is done, the
// remaining entries are left untouched and the context error is returned.
func Apply(ctx context.Context, env *Env, entries []plan.Entry) (report *Report, err error) {
	if err := env.validate(true); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	report = &Report{}

	index, err := locator.Scan(env.Fs, env.Layout.AssetDir)
	if err != nil {
		return nil, err
	}

	codec, err := assetbundle.NewCodec(env.EngineVersion)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, codec.Close())
	}()

	if err := env.Fs.MkdirAll(env.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("couldn't create the work folder %s: %w", env.WorkDir, err)
	}
	workDir, err := afero.TempDir(env.Fs, env.WorkDir, "setswapper-")
	if err != nil {
		return nil, fmt.Errorf("couldn't create a temporary folder in %s: %w", env.WorkDir, err)
	}
	defer func() {
		if rerr := env.Fs.RemoveAll(workDir); rerr != nil {
			err = multierr.Append(err, fmt.Errorf("couldn't remove %s: %w", workDir, rerr))
		}
	}()

	r := &run{
		env:     env,
		index:   index,
		store:   backup.NewStore(env.Fs, env.BackupDir),
		patcher: patch.New(env.Fs, codec),
		workDir: workDir,
	}

	env.emit(Event{
		Kind:    EventRunStarted,
		Index:   -1,
		Message: fmt.Sprintf("Applying %d swap(s)", len(entries)),
	})
	log.Debugf("Backing up containers to %s", r.store.Dir())
	warnDuplicates(entries)

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			log.Warnf("Run canceled, %d swap(s) left untouched", len(entries)-i)
			return report, err
		}

		result := r.applyEntry(ctx, i, entry)
		report.Entries = append(report.Entries, result)
	}

	env.emit(Event{
		Kind:  EventRunFinished,
		Index: -1,
		Message: fmt.Sprintf(
			"Done: %d swapped, %d not found, %d invalid, %d failed",
			report.Count(OutcomeSwapped),
			report.Count(OutcomeNotFound),
			report.Count(OutcomeInvalid),
			report.Count(OutcomeFailed),
		),
	})

	return report, nil
}

func (r *run) applyEntry(ctx context.Context, i int, entry plan.Entry) EntryResult {
	result := EntryResult{Index: i, Entry: entry}

	skip := func(outcome Outcome, message string, err error) EntryResult {
		result.Outcome = outcome
		result.Err = err
		kind := EventEntrySkipped
		if outcome == OutcomeFailed {
			kind = EventEntryFailed
		}
		r.env.emit(Event{Kind: kind, Index: i, Entry: entry, Message: message, Err: err})
		return result
	}

	r.env.emit(Event{Kind: EventEntryStarted, Index: i, Entry: entry, Message: "Processing swap"})

	identity, err := r.complete(ctx, entry)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return skip(OutcomeNotFound, "Couldn't find the printing of the card", err)
		}
		if entry.SourceCardName == "" {
			return skip(OutcomeInvalid, "Invalid swap entry", err)
		}
		return skip(OutcomeFailed, "Couldn't search for the card", err)
	}

	ids, err := r.env.Resolver.Lookup(ctx, identity.Printing())
	if err != nil {
		if errors.Is(err, carddb.ErrNotFound) {
			return skip(OutcomeNotFound, "Card not found in the local database", err)
		}
		return skip(OutcomeFailed, "Couldn't query the local database", err)
	}
	result.IDs = ids

	loc, err := r.index.Locate(ids)
	if err != nil {
		return skip(OutcomeNotFound, "Couldn't locate the containers of the card", err)
	}

	target := entry.Target()
	if target == "" {
		return skip(OutcomeInvalid, "Missing target", errMissingTarget)
	}

	targetCard, err := r.env.Metadata.Fetch(ctx, target)
	if err != nil {
		return skip(OutcomeFailed, "Couldn't fetch the target card", err)
	}

	img, chapter, err := r.downloadArt(ctx, ids, targetCard)
	if err != nil {
		return skip(OutcomeFailed, "Couldn't get the art of the target card", err)
	}

	for _, containerPath := range loc.Paths() {
		created, err := r.store.Backup(containerPath)
		if err != nil {
			return skip(OutcomeFailed, "Couldn't back up a container", err)
		}
		if created {
			r.env.emit(Event{
				Kind:    EventBackedUp,
				Index:   i,
				Entry:   entry,
				Path:    containerPath,
				Message: "Backed up container",
			})
		}
	}

	req := patch.Request{
		IDs:     ids,
		Image:   img,
		Chapter: chapter,
	}
	if !r.env.ArtOnly {
		name := targetCard.Name
		if name == "" {
			name = entry.SourceCardName
		}
		req.Name = &name
	}

	patched, err := r.patcher.Apply(loc, req)
	if patched != nil {
		result.Containers = patched.Written
		result.NameReplaced = patched.NameReplaced
	}
	if err != nil {
		if errors.Is(err, patch.ErrNoTexture) {
			return skip(OutcomeNotFound, "No art record found", err)
		}
		return skip(OutcomeFailed, "Couldn't patch the containers", err)
	}

	result.Outcome = OutcomeSwapped

	for _, containerPath := range result.Containers {
		r.env.emit(Event{
			Kind:    EventPatched,
			Index:   i,
			Entry:   entry,
			Path:    containerPath,
			Message: fmt.Sprintf("Swapped with %s", metadata.SetNumber(targetCard)),
		})
	}

	return result
}

// complete returns the identity of the entry, looking up the printing by
// exact name when the entry doesn't carry one.
func (r *run) complete(ctx context.Context, entry plan.Entry) (card.CardIdentity, error) {
	identity := entry.Identity()
	if identity.Complete() {
		return identity, nil
	}

	if identity.Name == "" {
		return identity, errors.New("the entry has neither a name nor a printing")
	}

	log.Infof("Looking up the printing of %s", identity.Name)

	found, err := r.env.Metadata.SearchByName(ctx, identity.Name)
	if err != nil {
		return identity, err
	}

	identity.ExpansionCode = card.NormalizeExpansionCode(found.Set)
	identity.CollectorNumber = found.CollectorNumber

	log.Debugf("Using printing %s for %s", identity.Printing(), identity.Name)

	return identity, nil
}

// downloadArt downloads the image of the target card into the work folder.
// Chapter cards use the full card image, which is letterboxed afterwards.
func (r *run) downloadArt(ctx context.Context, ids card.InternalIDs, target scryfall.Card) (img image.Image, chapter bool, err error) {
	chapter = patch.IsChapterLayout(target.TypeLine)

	imageURL := metadata.ImageURL(target, chapter)
	if imageURL == "" {
		return nil, chapter, fmt.Errorf("no image available for %s", target.Name)
	}

	imagePath := filepath.Join(r.workDir, strconv.Itoa(ids.ArtID)+imageExt(imageURL))

	if err := r.env.Metadata.Download(ctx, r.env.Fs, imageURL, imagePath); err != nil {
		return nil, chapter, err
	}

	img, err = patch.DecodeImage(r.env.Fs, imagePath)
	if err != nil {
		return nil, chapter, err
	}

	return img, chapter, nil
}

func imageExt(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ".img"
	}
	if ext := path.Ext(u.Path); ext != "" {
		return ext
	}
	return ".img"
}

// warnDuplicates logs swaps that repeat the printing of an earlier one.
// They are still applied in order, so the last one wins on disk.
func warnDuplicates(entries []plan.Entry) {
	complete := 0
	for _, entry := range entries {
		if entry.Identity().Complete() {
			complete++
		}
	}

	if duplicates := complete - len(plan.Index(entries)); duplicates > 0 {
		log.Warnf("%d swap(s) repeat an earlier printing, the last one wins", duplicates)
	}
}
