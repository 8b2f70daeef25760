// Package backup keeps pristine copies of the containers before they are
// modified, and puts them back on request.
package backup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/jeandeaual/mtga-setswapper/assetbundle"
	"github.com/jeandeaual/mtga-setswapper/log"
)

// containerPattern matches the files restored from the store.
const containerPattern = "*.{bundle,mtga}"

// Store is a flat folder of container copies, named like the originals.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates a store rooted at dir. The folder is created on the first
// backup.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Dir returns the folder of the store.
func (s *Store) Dir() string {
	return s.dir
}

// Has reports whether the store holds a copy of the container name.
func (s *Store) Has(name string) (bool, error) {
	return afero.Exists(s.fs, filepath.Join(s.dir, name))
}

// Backup copies the container at path into the store. An existing copy is
// never overwritten since it is the pristine one; created is false in that
// case.
func (s *Store) Backup(path string) (created bool, err error) {
	name := filepath.Base(path)

	exists, err := s.Has(name)
	if err != nil {
		return false, fmt.Errorf("couldn't check the backup of %s: %w", name, err)
	}
	if exists {
		log.Debugf("Backup for %s already exists, skipping", name)
		return false, nil
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return false, fmt.Errorf("couldn't read %s: %w", path, err)
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return false, fmt.Errorf("couldn't create the backup folder %s: %w", s.dir, err)
	}

	if err := assetbundle.WriteFileAtomic(s.fs, filepath.Join(s.dir, name), data); err != nil {
		return false, fmt.Errorf("couldn't back up %s: %w", name, err)
	}

	log.Infof("Backed up %s", name)

	return true, nil
}

// Restore copies every container of the store into assetDir, replacing the
// current files. It returns the names of the restored containers, which is
// empty when there is nothing to restore.
func (s *Store) Restore(assetDir string) ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if os.IsNotExist(err) {
		log.Infof("No backup folder found at %s, nothing to restore", s.dir)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("couldn't list the backup folder %s: %w", s.dir, err)
	}

	var restored []string

	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		if ok, _ := doublestar.Match(containerPattern, info.Name()); !ok {
			continue
		}

		data, err := afero.ReadFile(s.fs, filepath.Join(s.dir, info.Name()))
		if err != nil {
			return restored, fmt.Errorf("couldn't read the backup of %s: %w", info.Name(), err)
		}

		if err := assetbundle.WriteFileAtomic(s.fs, filepath.Join(assetDir, info.Name()), data); err != nil {
			return restored, fmt.Errorf("couldn't restore %s: %w", info.Name(), err)
		}

		log.Debugf("Restored %s", info.Name())
		restored = append(restored, info.Name())
	}

	if len(restored) == 0 {
		log.Infof("The backup folder %s is empty, nothing to restore", s.dir)
	}

	return restored, nil
}
