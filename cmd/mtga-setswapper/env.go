package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/afero"

	setswapper "github.com/jeandeaual/mtga-setswapper"
	"github.com/jeandeaual/mtga-setswapper/carddb"
	"github.com/jeandeaual/mtga-setswapper/install"
	"github.com/jeandeaual/mtga-setswapper/log"
	"github.com/jeandeaual/mtga-setswapper/metadata"
)

func newMetadataClient() (*metadata.Client, error) {
	return metadata.NewClient(
		metadata.WithBaseURL(cfg.APIBaseURL),
		metadata.WithDelay(cfg.RequestDelay),
	)
}

// newEnv builds the environment of a run against the configured
// installation. The returned function releases the card database.
func newEnv(ctx context.Context, withDatabase bool) (*setswapper.Env, func(), error) {
	if len(cfg.InstallPath) == 0 {
		return nil, nil, errors.New("the installation folder isn't set (use --install or install_path in the config file)")
	}

	fs := afero.NewOsFs()

	layout, err := install.NewLayout(fs, cfg.InstallPath)
	if err != nil {
		return nil, nil, err
	}
	if err := layout.Validate(fs); err != nil {
		return nil, nil, err
	}

	env := &setswapper.Env{
		Fs:        fs,
		Layout:    layout,
		BackupDir: cfg.BackupDir,
		WorkDir:   cfg.WorkDir,
		ArtOnly:   cfg.ArtOnly,
		Observer:  setswapper.LogObserver,
	}

	if !withDatabase {
		return env, func() {}, nil
	}

	env.EngineVersion = install.DetectEngineVersion(fs, layout.DataPath)

	dbPath, err := carddb.FindDatabase(layout.DataPath)
	if err != nil {
		return nil, nil, err
	}

	db, err := carddb.Open(ctx, dbPath)
	if err != nil {
		return nil, nil, err
	}
	env.Resolver = db

	client, err := newMetadataClient()
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	env.Metadata = client
	log.Debugf("Using the card API at %s", client.BaseURL())

	release := func() {
		if err := db.Close(); err != nil {
			log.Warnf("Couldn't close the card database: %v", err)
		}
	}

	return env, release, nil
}

// runJob runs job in the background and waits for it. An interrupt cancels
// the job, which stops before its next swap.
func runJob(job setswapper.Job) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var runner setswapper.Runner

	task, err := runner.Start(ctx, job)
	if err != nil {
		return err
	}

	return task.Wait()
}
