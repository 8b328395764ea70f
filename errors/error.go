package errors

import (
	"fmt"
	"strings"
)

// MissingFormatError occurs when a dataset contains files for which no Format has been registered.
// Formats register themselves when their package is imported, so Hint names the package to import.
type MissingFormatError struct {
	Ext  string // file extension which could not be matched
	Path string // first file encountered with this extension
	Hint string // import path of the package providing the Format, if known
}

// Error returns a textual representation of this MissingFormatError
func (e MissingFormatError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("no format registered for %q files (%s)", e.Ext, e.Path)
	}
	return fmt.Sprintf("no format registered for %q files (%s): import _ %q", e.Ext, e.Path, e.Hint)
}

// UnknownFormatError occurs when a Format is requested by a name which was never registered
type UnknownFormatError struct{ Name string }

// Error returns a textual representation of this UnknownFormatError
func (e UnknownFormatError) Error() string {
	return fmt.Sprintf("format %s is not registered", e.Name)
}

// NoDataFilesError occurs when a dataset root does not contain any data files
type NoDataFilesError struct{ Root string }

// Error returns a textual representation of this NoDataFilesError
func (e NoDataFilesError) Error() string {
	return fmt.Sprintf("dataset %s contains no data files", e.Root)
}

// UnsupportedSchemeError occurs when a dataset root uses a URI scheme with no known filesystem
type UnsupportedSchemeError struct{ Scheme string }

// Error returns a textual representation of this UnsupportedSchemeError
func (e UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("unsupported filesystem scheme %q", e.Scheme)
}

// UnknownColumnError occurs when a projected or filtered column does not exist in a file
type UnknownColumnError struct {
	Name string
	Path string
}

// Error returns a textual representation of this UnknownColumnError
func (e UnknownColumnError) Error() string {
	return fmt.Sprintf("column %s does not exist in %s", e.Name, e.Path)
}

// InvalidWorkerInfoError occurs when a worker index is outside of [0, NumWorkers)
type InvalidWorkerInfoError struct {
	ID         int
	NumWorkers int
}

// Error returns a textual representation of this InvalidWorkerInfoError
func (e InvalidWorkerInfoError) Error() string {
	return fmt.Sprintf("invalid worker %d of %d", e.ID, e.NumWorkers)
}

// TypeMismatchError occurs when a converted Column is accessed as the wrong element type
type TypeMismatchError struct {
	Column string
	Want   string
	Got    string
}

// Error returns a textual representation of this TypeMismatchError
func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("column %s holds %s values, not %s", e.Column, e.Got, e.Want)
}

// FilterTypeError occurs when a filter literal cannot be compared against a column's type
type FilterTypeError struct {
	Field string
	Type  string
	Value interface{}
}

// Error returns a textual representation of this FilterTypeError
func (e FilterTypeError) Error() string {
	return fmt.Sprintf("cannot compare column %s of type %s with %v (%T)", e.Field, e.Type, e.Value, e.Value)
}

// FilterSyntaxError occurs when a textual filter cannot be parsed
type FilterSyntaxError struct {
	Input  string
	Offset int
	Msg    string
}

// Error returns a textual representation of this FilterSyntaxError
func (e FilterSyntaxError) Error() string {
	var res strings.Builder
	fmt.Fprintf(&res, "filter syntax error at offset %d: %s", e.Offset, e.Msg)
	if e.Input != "" {
		fmt.Fprintf(&res, " in %q", e.Input)
	}
	return res.String()
}
