// Package install derives the folders of a game installation from its root.
package install

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"

	"github.com/jeandeaual/mtga-setswapper/log"
)

// Layout holds the folders of an installation.
type Layout struct {
	// Root is the installation folder.
	Root string
	// DataPath is the folder holding level0 and the Downloads folder.
	DataPath string
	// AssetDir holds the card containers.
	AssetDir string
}

// NewLayout derives the layout of the installation at root.
func NewLayout(fs afero.Fs, root string) (Layout, error) {
	return newLayout(fs, root, runtime.GOOS)
}

func newLayout(fs afero.Fs, root, goos string) (Layout, error) {
	layout := Layout{Root: root}

	if stat, err := fs.Stat(root); err != nil {
		return layout, fmt.Errorf("installation path \"%s\" is not accessible: %w", root, err)
	} else if !stat.IsDir() {
		return layout, fmt.Errorf("installation path \"%s\" is not a directory", root)
	}

	layout.DataPath = dataPath(fs, root, goos)
	layout.AssetDir = filepath.Join(layout.DataPath, "Downloads", "AssetBundle")

	log.Debugw("Installation layout", "root", layout.Root, "data", layout.DataPath, "assets", layout.AssetDir)

	return layout, nil
}

func dataPath(fs afero.Fs, root, goos string) string {
	if goos == "darwin" && strings.HasSuffix(root, ".app") {
		return filepath.Join(root, "Contents", "Resources", "Data")
	}

	nested := filepath.Join(root, "MTGA_Data")
	if stat, err := fs.Stat(nested); err == nil && stat.IsDir() {
		log.Debugf("Found nested data folder at %s", nested)
		return nested
	}

	return root
}

// Validate checks that the asset folder exists.
func (l Layout) Validate(fs afero.Fs) error {
	if stat, err := fs.Stat(l.AssetDir); err != nil {
		return fmt.Errorf("asset folder \"%s\" is not accessible: %w", l.AssetDir, err)
	} else if !stat.IsDir() {
		return fmt.Errorf("asset folder \"%s\" is not a directory", l.AssetDir)
	}
	return nil
}
