package install

import (
	"bytes"
	"path/filepath"
	"regexp"

	"github.com/spf13/afero"

	"github.com/jeandeaual/mtga-setswapper/log"
)

// FallbackEngineVersion is used when the version can't be read from the
// installation.
const FallbackEngineVersion = "2022.3.42f1"

// The version string sits in this byte window of level0.
const (
	versionStart = 40
	versionEnd   = 60
)

var engineVersionRegexp = regexp.MustCompile(`^20\d{2}\.\d+\.\d+[fab]\d+`)

// DetectEngineVersion reads the engine version from the level0 file of the
// data path, returning FallbackEngineVersion when it can't be found.
func DetectEngineVersion(fs afero.Fs, dataPath string) string {
	path := filepath.Join(dataPath, "level0")

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		log.Warnf("Couldn't read %s, using engine version %s: %v", path, FallbackEngineVersion, err)
		return FallbackEngineVersion
	}

	version, ok := parseEngineVersion(data)
	if !ok {
		log.Warnf("Couldn't parse the engine version from %s, using %s", path, FallbackEngineVersion)
		return FallbackEngineVersion
	}

	log.Infof("Detected engine version %s", version)

	return version
}

func parseEngineVersion(data []byte) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) <= versionStart {
		return "", false
	}

	window := data[versionStart:min(len(data), versionEnd)]
	window = bytes.ReplaceAll(window, []byte{0}, nil)

	version := engineVersionRegexp.Find(window)
	if version == nil {
		return "", false
	}

	return string(version), true
}
