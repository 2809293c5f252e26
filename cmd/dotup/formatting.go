package main

import (
	"fmt"

	"github.com/arthur-debert/dotup/pkg/bootstrap"
	"github.com/arthur-debert/dotup/pkg/types"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
)

// plainOutput reports whether styled output should be suppressed
func plainOutput() bool {
	return termenv.EnvColorProfile() == termenv.Ascii
}

// formatBold returns the string formatted as bold using pterm
func formatBold(s string) string {
	if plainOutput() {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// printSummary renders the per-candidate outcomes and the final count
func printSummary(result *bootstrap.Result) {
	for _, link := range result.Links {
		dest := link.Candidate.DestinationPath
		switch link.Action {
		case types.ActionLink:
			pterm.Success.Printfln("linked %s", dest)
		case types.ActionOverwrite:
			pterm.Warning.Printfln("overwrote %s", dest)
		case types.ActionBackup:
			pterm.Warning.Printfln("backed up and linked %s", dest)
		case types.ActionSkip:
			pterm.Info.Printfln("skipped %s", dest)
		}
	}

	fmt.Printf("%s %d linked, %d overwritten, %d backed up, %d skipped\n",
		formatBold(fmt.Sprintf("%d files:", len(result.Links))),
		result.Linked, result.Overwritten, result.BackedUp, result.Skipped)

	if result.IdentityWritten {
		pterm.Success.Printfln("wrote git identity file")
	}
}
