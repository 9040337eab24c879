package ast

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// SourceLocation identifies a position in a source file. Lines and columns
// are 1-based; columns count bytes. Offset is the 0-based byte offset.
//
// SourceLocation is a comparable value: two locations are equal iff all four
// fields are equal, so it can be used directly as a map key.
type SourceLocation struct {
	File   string
	Line   int
	Column int
	Offset int
}

// IsValid reports whether l points into a file.
func (l SourceLocation) IsValid() bool {
	return l.File != "" && l.Line > 0
}

// Hash returns a stable hash over the four identity fields. Equal locations
// always hash equally.
func (l SourceLocation) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(l.File)
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(l.Line))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(l.Column))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(l.Offset))
	_, _ = d.Write(buf[:])
	return d.Sum64()
}

// Less orders locations by file, then offset.
func (l SourceLocation) Less(o SourceLocation) bool {
	if l.File != o.File {
		return l.File < o.File
	}
	if l.Offset != o.Offset {
		return l.Offset < o.Offset
	}
	if l.Line != o.Line {
		return l.Line < o.Line
	}
	return l.Column < o.Column
}

func (l SourceLocation) String() string {
	if l.File == "" {
		return fmt.Sprintf("<no file>:%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Extent is a half-open source range [Start, End).
type Extent struct {
	Start SourceLocation
	End   SourceLocation
}

// Contains reports whether loc falls inside e. Only locations in the same
// file can be contained.
func (e Extent) Contains(loc SourceLocation) bool {
	if loc.File != e.Start.File {
		return false
	}
	return loc.Offset >= e.Start.Offset && loc.Offset < e.End.Offset
}

func (e Extent) String() string {
	return fmt.Sprintf("[%d, %d]:[%d, %d]", e.Start.Line, e.Start.Column, e.End.Line, e.End.Column)
}
