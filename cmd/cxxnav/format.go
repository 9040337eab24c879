package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jward/cxxnav"
)

func formatLocationsText(w io.Writer, locs []CLILocation) {
	for _, loc := range locs {
		fmt.Fprintf(w, "%s:%d:%d\n", loc.File, loc.Line, loc.Column)
	}
}

func formatInfoText(w io.Writer, info CLIInfo) {
	fmt.Fprintf(w, "%s\t%s\t%s", info.Semantic, info.Kind, info.Spelling)
	if info.Location != nil {
		fmt.Fprintf(w, "\t%s:%d:%d", info.Location.File, info.Location.Line, info.Location.Column)
	}
	fmt.Fprintln(w)
}

func formatDiagnosticsText(w io.Writer, diags []CLIDiagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", d.Location.File, d.Location.Line, d.Location.Column, d.Severity, d.Message)
	}
}

func formatUnitsText(w io.Writer, units []CLIUnit) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tDIAGNOSTICS")
	for _, u := range units {
		fmt.Fprintf(tw, "%s\t%d\n", u.Key, u.Diagnostics)
	}
	tw.Flush()
}

func formatParseText(w io.Writer, s CLIParseSummary) {
	formatUnitsText(w, s.Units)
	for _, f := range s.Failed {
		fmt.Fprintf(w, "failed: %s\n", f)
	}
	fmt.Fprintf(w, "\nStore: %s (saved: %t)\n", s.Store, s.Saved)
}

// formatDumpText prints one row per node, indented by depth.
func formatDumpText(w io.Writer, rows []cxxnav.DumpRow) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCATION\tKIND\tSPELLING\tTYPE\tSEMANTIC\tREFERENCED\tUSR")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d:%d\t%s%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Location.Line, r.Location.Column, strings.Repeat("  ", r.Depth), r.Kind,
			r.Spelling, r.TypeKind, r.Semantic, r.Referenced, r.USR)
	}
	tw.Flush()
}

// writeText dispatches to the text formatter for the result type.
func writeText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLILocation:
		formatLocationsText(w, v)
	case CLILocation:
		formatLocationsText(w, []CLILocation{v})
	case CLIInfo:
		formatInfoText(w, v)
	case []CLIDiagnostic:
		formatDiagnosticsText(w, v)
	case []CLIUnit:
		formatUnitsText(w, v)
	case CLIParseSummary:
		formatParseText(w, v)
	case []cxxnav.DumpRow:
		formatDumpText(w, v)
	case []string:
		for _, s := range v {
			fmt.Fprintln(w, s)
		}
	case string:
		fmt.Fprintln(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// output writes a result in the selected format.
func (a *app) output(command string, results any) error {
	result := CLIResult{Command: command, Results: results}
	if a.format == "text" {
		return writeText(a.stdout, result)
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError reports err in the selected format and returns it marked as
// handled. In JSON mode the error goes to stdout in the envelope; in text
// mode it goes to stderr.
func (a *app) outputError(command string, err error) error {
	if a.format == "text" {
		fmt.Fprintf(a.stderr, "Error: %s\n", err)
		return errHandled{err}
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{Command: command, Error: err.Error()})
	return errHandled{err}
}

var validFormats = []string{"json", "text"}

func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
