package plan

import (
	"context"
	"fmt"
	"sort"
	"strings"

	scryfall "github.com/BlueMonday/go-scryfall"

	"github.com/jeandeaual/mtga-setswapper/card"
	"github.com/jeandeaual/mtga-setswapper/log"
	"github.com/jeandeaual/mtga-setswapper/metadata"
)

// SetSearcher returns every printing of a set.
type SetSearcher interface {
	SearchSet(ctx context.Context, setCode string) ([]scryfall.Card, error)
}

// GenerateCrossSet matches the printings of two sets by oracle ID and emits
// one entry per card present in both, replacing the source printing with the
// target one. Entries are sorted by source card name.
func GenerateCrossSet(ctx context.Context, searcher SetSearcher, sourceSet, targetSet string) ([]Entry, error) {
	sourceSet = card.NormalizeExpansionCode(sourceSet)
	targetSet = card.NormalizeExpansionCode(targetSet)

	log.Infof("Generating swaps from %s to %s", sourceSet, targetSet)

	sourceCards, err := searcher.SearchSet(ctx, sourceSet)
	if err != nil {
		return nil, fmt.Errorf("couldn't fetch the cards of %s: %w", sourceSet, err)
	}
	targetCards, err := searcher.SearchSet(ctx, targetSet)
	if err != nil {
		return nil, fmt.Errorf("couldn't fetch the cards of %s: %w", targetSet, err)
	}

	sourceByOracle := byOracleID(sourceCards)
	targetByOracle := byOracleID(targetCards)

	log.Infof("Found %d functional cards in %s", len(sourceByOracle), sourceSet)
	log.Infof("Found %d functional cards in %s", len(targetByOracle), targetSet)

	entries := make([]Entry, 0, len(sourceByOracle))

	for oracleID, source := range sourceByOracle {
		target, found := targetByOracle[oracleID]
		if !found {
			continue
		}

		entry := Entry{
			SourceCardName:  source.Name,
			ExpansionCode:   card.NormalizeExpansionCode(source.Set),
			CollectorNumber: source.CollectorNumber,
			TargetAPIURL:    target.URI,
		}

		if len(entry.SourceCardName) == 0 ||
			len(entry.ExpansionCode) == 0 ||
			len(entry.CollectorNumber) == 0 ||
			len(entry.TargetAPIURL) == 0 {
			log.Warnw(
				"Missing data for matching card, skipping it",
				"oracleID", oracleID,
				"source", source.Name,
				"target", target.Name,
			)
			continue
		}

		log.Debugf("Matched %s [%s] with %s [%s]", source.Name, metadata.SetNumber(source), target.Name, metadata.SetNumber(target))

		entries = append(entries, entry)
	}

	sortEntries(entries)

	log.Infof("Found %d matching cards between %s and %s", len(entries), sourceSet, targetSet)

	return entries, nil
}

// GenerateRenames emits one entry per printing of a set that has a printed
// name different from its canonical one. Applying such an entry restores the
// canonical name and art on the printing.
func GenerateRenames(ctx context.Context, searcher SetSearcher, set string) ([]Entry, error) {
	set = card.NormalizeExpansionCode(set)

	cards, err := searcher.SearchSet(ctx, set)
	if err != nil {
		return nil, fmt.Errorf("couldn't fetch the cards of %s: %w", set, err)
	}

	var entries []Entry

	for _, c := range cards {
		if c.PrintedName == nil || len(*c.PrintedName) == 0 || *c.PrintedName == c.Name {
			continue
		}

		target := c.URI
		if len(target) == 0 {
			target = metadata.PageURL(c)
		}
		if len(target) == 0 {
			log.Warnw("Missing locator for card, skipping it", "card", c.Name)
			continue
		}

		entries = append(entries, Entry{
			SourceCardName:  *c.PrintedName,
			ExpansionCode:   card.NormalizeExpansionCode(c.Set),
			CollectorNumber: c.CollectorNumber,
			TargetAPIURL:    target,
		})
	}

	sortEntries(entries)

	log.Infof("Found %d cards with an alternate printed name in %s", len(entries), set)

	return entries, nil
}

// byOracleID indexes printings by oracle ID. Printings without an oracle ID
// (e.g. reversible cards) are ignored; the last printing of a card wins.
func byOracleID(cards []scryfall.Card) map[string]scryfall.Card {
	index := make(map[string]scryfall.Card, len(cards))

	for _, c := range cards {
		if len(c.OracleID) == 0 {
			continue
		}
		index[c.OracleID] = c
	}

	return index
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].SourceCardName != entries[j].SourceCardName {
			return entries[i].SourceCardName < entries[j].SourceCardName
		}
		ki, kj := entries[i].Identity().Printing(), entries[j].Identity().Printing()
		if ki.ExpansionCode != kj.ExpansionCode {
			return ki.ExpansionCode < kj.ExpansionCode
		}
		return strings.Compare(ki.CollectorNumber, kj.CollectorNumber) < 0
	})
}
