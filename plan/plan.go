// Package plan reads, writes and generates swap plans.
package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeandeaual/mtga-setswapper/card"
)

// ErrInvalidPlan is returned when a swap plan file is missing or malformed.
var ErrInvalidPlan = errors.New("invalid swap plan")

// Entry declares that the art and name of a printing should be replaced by
// those of the printing found at the target locator.
type Entry struct {
	SourceCardName  string `json:"source_card_name"`
	ExpansionCode   string `json:"expansion_code,omitempty"`
	CollectorNumber string `json:"collector_number,omitempty"`
	// TargetAPIURL is written by the generators.
	TargetAPIURL string `json:"target_api_url,omitempty"`
	// TargetScryfallURL is accepted for older plan files.
	TargetScryfallURL string `json:"target_scryfall_url,omitempty"`
}

// Identity returns the source printing of the entry.
func (e Entry) Identity() card.CardIdentity {
	return card.CardIdentity{
		Name:            e.SourceCardName,
		ExpansionCode:   e.ExpansionCode,
		CollectorNumber: e.CollectorNumber,
	}
}

// Target returns the locator of the target printing, or an empty string.
func (e Entry) Target() string {
	if len(e.TargetAPIURL) > 0 {
		return e.TargetAPIURL
	}
	return e.TargetScryfallURL
}

func (e Entry) String() string {
	if e.Identity().Complete() {
		return e.Identity().String()
	}
	return e.SourceCardName
}

// UnmarshalJSON accepts collector numbers written as JSON numbers.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type entry Entry
	var raw struct {
		entry
		CollectorNumber json.RawMessage `json:"collector_number,omitempty"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Entry(raw.entry)

	if len(raw.CollectorNumber) == 0 || string(raw.CollectorNumber) == "null" {
		e.CollectorNumber = ""
		return nil
	}

	var number string
	if err := json.Unmarshal(raw.CollectorNumber, &number); err == nil {
		e.CollectorNumber = number
		return nil
	}

	var numeric json.Number
	if err := json.Unmarshal(raw.CollectorNumber, &numeric); err != nil {
		return fmt.Errorf("invalid collector number %s", raw.CollectorNumber)
	}
	e.CollectorNumber = numeric.String()

	return nil
}

// Load reads a swap plan file.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't read %s: %v", ErrInvalidPlan, path, err)
	}

	entries, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return entries, nil
}

// Decode parses the JSON representation of a swap plan.
func Decode(data []byte) ([]Entry, error) {
	var entries []Entry

	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}

	for i := range entries {
		entries[i].ExpansionCode = card.NormalizeExpansionCode(entries[i].ExpansionCode)
		entries[i].CollectorNumber = strings.TrimSpace(entries[i].CollectorNumber)
	}

	return entries, nil
}

// Save writes a swap plan file, creating the parent folder if needed.
func Save(path string, entries []Entry) error {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")

	if entries == nil {
		entries = []Entry{}
	}

	if err := encoder.Encode(entries); err != nil {
		return fmt.Errorf("couldn't encode the swap plan: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("couldn't create the folder for %s: %w", path, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("couldn't write %s: %w", path, err)
	}

	return nil
}

// Index maps source printings to their entry. When a printing appears more
// than once, the last entry wins.
func Index(entries []Entry) map[card.PrintingKey]Entry {
	index := make(map[card.PrintingKey]Entry, len(entries))

	for _, entry := range entries {
		if entry.Identity().Complete() {
			index[entry.Identity().Printing()] = entry
		}
	}

	return index
}
