package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	setswapper "github.com/jeandeaual/mtga-setswapper"
	"github.com/jeandeaual/mtga-setswapper/plan"
)

func TestPrintReport(t *testing.T) {
	color.NoColor = true

	report := &setswapper.Report{Entries: []setswapper.EntryResult{
		{
			Entry:        plan.Entry{SourceCardName: "A", ExpansionCode: "OM1", CollectorNumber: "1"},
			Outcome:      setswapper.OutcomeSwapped,
			Containers:   []string{"/assets/cards_1_2.bundle", "/assets/1_CardArt_x.mtga"},
			NameReplaced: true,
		},
		{
			Entry:   plan.Entry{SourceCardName: "Foo", ExpansionCode: "ABC", CollectorNumber: "1"},
			Outcome: setswapper.OutcomeNotFound,
			Err:     errors.New("card not found in the local database"),
		},
	}}

	var buf bytes.Buffer
	printReport(&buf, report)

	assert.Equal(t, "swapped   A [OM1-1] (art and name)\n"+
		"not found Foo [ABC-1]: card not found in the local database\n"+
		"\n"+
		"1 swapped, 1 not found, 0 invalid, 0 failed, 2 file(s) modified\n", buf.String())
}

func TestDisplayBuildInformation(t *testing.T) {
	defer func(v, b string) { version, buildTimeStr = v, b }(version, buildTimeStr)

	version = "0123456789abcdef0123456789abcdef01234567"
	buildTimeStr = "2026-01-02T15:04:05"

	var buf bytes.Buffer
	require.NoError(t, displayBuildInformation(&buf))
	assert.Contains(t, buf.String(), "mtga-setswapper version 0123456\n")
	assert.Contains(t, buf.String(), "on 2026-01-02T15:04:05Z")

	buildTimeStr = "yesterday"
	assert.Error(t, displayBuildInformation(&buf))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Invalid swap plan", capitalize("invalid swap plan"))
	assert.Equal(t, "", capitalize(""))
}
