package setswapper

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jeandeaual/mtga-setswapper/backup"
)

// Restore puts every backed up container back into the asset folder.
// It returns the names of the restored containers; an empty result means
// there was nothing to restore.
func Restore(ctx context.Context, env *Env) ([]string, error) {
	if err := env.validate(false); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	env.emit(Event{
		Kind:    EventRunStarted,
		Index:   -1,
		Message: fmt.Sprintf("Restoring the backups from %s", env.BackupDir),
	})

	restored, err := backup.NewStore(env.Fs, env.BackupDir).Restore(env.Layout.AssetDir)

	for _, name := range restored {
		env.emit(Event{
			Kind:    EventRestored,
			Index:   -1,
			Path:    filepath.Join(env.Layout.AssetDir, name),
			Message: "Restored container",
		})
	}

	if err != nil {
		return restored, err
	}

	message := fmt.Sprintf("Restored %d container(s)", len(restored))
	if len(restored) == 0 {
		message = "Nothing to restore"
	}
	env.emit(Event{Kind: EventRunFinished, Index: -1, Message: message})

	return restored, nil
}
