package setswapper

import (
	"context"
	"errors"

	"github.com/jeandeaual/mtga-setswapper/log"
	"github.com/jeandeaual/mtga-setswapper/plan"
)

// GenerateOptions selects the kind of plan to build.
type GenerateOptions struct {
	// SourceSet is the expansion whose cards get replaced.
	SourceSet string
	// TargetSet is the expansion providing the replacements. Unused when
	// Renames is set.
	TargetSet string
	// Renames builds a plan restoring the canonical names of the cards of
	// SourceSet that carry a printed name.
	Renames bool
}

// Generate builds a swap plan from the remote metadata service.
func Generate(ctx context.Context, service MetadataService, options GenerateOptions) ([]plan.Entry, error) {
	if service == nil {
		return nil, errors.New("no metadata service set")
	}
	if options.SourceSet == "" {
		return nil, errors.New("no source set given")
	}

	if options.Renames {
		log.Infof("Generating the rename plan of %s", options.SourceSet)
		return plan.GenerateRenames(ctx, service, options.SourceSet)
	}

	if options.TargetSet == "" {
		return nil, errors.New("no target set given")
	}

	log.Infof("Generating the swap plan from %s to %s", options.SourceSet, options.TargetSet)

	return plan.GenerateCrossSet(ctx, service, options.SourceSet, options.TargetSet)
}
