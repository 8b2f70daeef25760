package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	setswapper "github.com/jeandeaual/mtga-setswapper"
)

var outcomeColors = map[setswapper.Outcome]*color.Color{
	setswapper.OutcomeSwapped:  color.New(color.FgGreen),
	setswapper.OutcomeNotFound: color.New(color.FgYellow),
	setswapper.OutcomeInvalid:  color.New(color.FgYellow),
	setswapper.OutcomeFailed:   color.New(color.FgRed, color.Bold),
}

func printReport(w io.Writer, report *setswapper.Report) {
	for _, result := range report.Entries {
		c := outcomeColors[result.Outcome]
		status := c.Sprintf("%-9s", result.Outcome)

		switch {
		case result.Err != nil:
			fmt.Fprintf(w, "%s %s: %v\n", status, result.Entry, result.Err)
		case result.NameReplaced:
			fmt.Fprintf(w, "%s %s (art and name)\n", status, result.Entry)
		default:
			fmt.Fprintf(w, "%s %s (art)\n", status, result.Entry)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(
		w,
		"%s swapped, %s not found, %s invalid, %s failed, %d file(s) modified\n",
		outcomeColors[setswapper.OutcomeSwapped].Sprint(report.Count(setswapper.OutcomeSwapped)),
		outcomeColors[setswapper.OutcomeNotFound].Sprint(report.Count(setswapper.OutcomeNotFound)),
		outcomeColors[setswapper.OutcomeInvalid].Sprint(report.Count(setswapper.OutcomeInvalid)),
		outcomeColors[setswapper.OutcomeFailed].Sprint(report.Count(setswapper.OutcomeFailed)),
		len(report.Touched()),
	)
}
