package setswapper

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/jeandeaual/mtga-setswapper/card"
	"github.com/jeandeaual/mtga-setswapper/plan"
)

// Outcome is the result of one swap entry.
type Outcome int

const (
	// OutcomeSwapped means the art (and possibly the name) was replaced.
	OutcomeSwapped Outcome = iota
	// OutcomeNotFound means the card, its containers or its records
	// couldn't be found. Nothing was modified.
	OutcomeNotFound
	// OutcomeInvalid means the entry lacks the data needed to apply it.
	OutcomeInvalid
	// OutcomeFailed means a network, decode or write error occurred.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSwapped:
		return "swapped"
	case OutcomeNotFound:
		return "not found"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EntryResult is what happened to one entry.
type EntryResult struct {
	Index   int
	Entry   plan.Entry
	IDs     card.InternalIDs
	Outcome Outcome
	// Containers lists the files rewritten for this entry.
	Containers   []string
	NameReplaced bool
	Err          error
}

// Report summarizes a run.
type Report struct {
	Entries []EntryResult
}

// Count returns the number of entries with the given outcome.
func (r *Report) Count(outcome Outcome) int {
	count := 0
	for _, entry := range r.Entries {
		if entry.Outcome == outcome {
			count++
		}
	}
	return count
}

// Touched returns the distinct containers rewritten during the run.
func (r *Report) Touched() []string {
	seen := make(map[string]struct{})
	var paths []string

	for _, entry := range r.Entries {
		for _, path := range entry.Containers {
			if _, ok := seen[path]; !ok {
				seen[path] = struct{}{}
				paths = append(paths, path)
			}
		}
	}

	return paths
}

// Err combines the errors of the entries that weren't swapped.
func (r *Report) Err() error {
	var err error
	for _, entry := range r.Entries {
		if entry.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", entry.Entry, entry.Err))
		}
	}
	return err
}
