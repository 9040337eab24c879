package main

import "github.com/jward/cxxnav"

// CLIResult is the top-level JSON envelope for every command.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLILocation is a 1-based file position.
type CLILocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// CLIInfo is the classification of a node.
type CLIInfo struct {
	Semantic string       `json:"semantic"`
	Kind     string       `json:"kind"`
	Spelling string       `json:"spelling"`
	Location *CLILocation `json:"location,omitempty"`
}

// CLIDiagnostic is one front-end diagnostic.
type CLIDiagnostic struct {
	Severity string      `json:"severity"`
	Message  string      `json:"message"`
	Location CLILocation `json:"location"`
}

// CLIUnit summarizes one stored unit.
type CLIUnit struct {
	Key         string `json:"key"`
	Diagnostics int    `json:"diagnostics"`
}

// CLIParseSummary reports a parse run.
type CLIParseSummary struct {
	Units  []CLIUnit `json:"units"`
	Failed []string  `json:"failed,omitempty"`
	Store  string    `json:"store"`
	Saved  bool      `json:"saved"`
}

func toCLILocation(loc cxxnav.Location) CLILocation {
	return CLILocation{File: loc.File, Line: loc.Line, Column: loc.Column}
}

func toCLILocations(locs []cxxnav.Location) []CLILocation {
	out := make([]CLILocation, 0, len(locs))
	for _, loc := range locs {
		out = append(out, toCLILocation(loc))
	}
	return out
}

func toCLIInfo(info cxxnav.Info) CLIInfo {
	out := CLIInfo{
		Semantic: info.ID.String(),
		Kind:     info.Kind.String(),
		Spelling: info.Spelling,
	}
	if info.Location.IsValid() {
		loc := toCLILocation(info.Location)
		out.Location = &loc
	}
	return out
}

func toCLIDiagnostics(diags []cxxnav.Diagnostic) []CLIDiagnostic {
	out := make([]CLIDiagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, CLIDiagnostic{
			Severity: d.Severity.String(),
			Message:  d.Message,
			Location: toCLILocation(d.Location),
		})
	}
	return out
}
