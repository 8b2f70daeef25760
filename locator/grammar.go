package locator

import (
	"fmt"
	"regexp"
	"strconv"
)

// Kind is the kind of record a container holds.
type Kind int

const (
	// KindArt containers hold card artwork.
	KindArt Kind = iota
	// KindCard containers hold card metadata (titles, etc.).
	KindCard
)

func (k Kind) String() string {
	switch k {
	case KindArt:
		return "art"
	case KindCard:
		return "card"
	default:
		return "unknown"
	}
}

type kindNaming struct {
	// Tag used in individually-packaged file names: <id>_<Tag>_<hash>.mtga
	tag string
	// Prefix used in ranged bundle names: <prefix>_<start>_<end>.bundle
	rangePrefix string
}

var namings = map[Kind]kindNaming{
	KindArt:  {tag: "CardArt", rangePrefix: "cardart"},
	KindCard: {tag: "Card", rangePrefix: "cards"},
}

// Glob patterns selecting the candidate files of each naming scheme. Names
// matching these still need to pass the grammar below.
var (
	singlePatterns = map[Kind]string{
		KindArt:  "*_CardArt_*.mtga",
		KindCard: "*_Card_*.mtga",
	}
	rangePatterns = map[Kind]string{
		KindArt:  "cardart_*.bundle",
		KindCard: "cards_*.bundle",
	}
)

var (
	singleRegexp = regexp.MustCompile(`^(\d+)_(CardArt|Card)_([^/\\]+)\.mtga$`)
	rangeRegexp  = regexp.MustCompile(`^(cardart|cards)_(\d+)_(\d+)\.bundle$`)
)

// ParseSingleName parses the name of an individually-packaged record file.
func ParseSingleName(name string) (Kind, int, error) {
	matches := singleRegexp.FindStringSubmatch(name)
	if matches == nil {
		return 0, 0, fmt.Errorf("%q is not a record file name", name)
	}

	id, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid ID in %q: %w", name, err)
	}

	kind := KindCard
	if matches[2] == namings[KindArt].tag {
		kind = KindArt
	}

	return kind, id, nil
}

// ParseRangeName parses the name of a ranged bundle.
func ParseRangeName(name string) (Kind, int, int, error) {
	matches := rangeRegexp.FindStringSubmatch(name)
	if matches == nil {
		return 0, 0, 0, fmt.Errorf("%q is not a ranged bundle name", name)
	}

	start, err := strconv.Atoi(matches[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid range start in %q: %w", name, err)
	}
	end, err := strconv.Atoi(matches[3])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid range end in %q: %w", name, err)
	}
	if start > end {
		return 0, 0, 0, fmt.Errorf("invalid range in %q: %d > %d", name, start, end)
	}

	kind := KindCard
	if matches[1] == namings[KindArt].rangePrefix {
		kind = KindArt
	}

	return kind, start, end, nil
}
