package diagnostic

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"workbook-loader/internal/common"
)

// Diagnostics holds every diagnostic produced by a validation pass.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity `json:"severity"`
	// Code is a unique identifier for this type of diagnostic.
	Code string `json:"code"`
	// Message is the human-readable description.
	Message string `json:"message"`
	// Location points at the offending cell, column or schema node.
	Location Location `json:"location"`
}

// Location identifies where a diagnostic applies. Every field is optional.
type Location struct {
	Sheet        int    `json:"sheet"`
	Row          int    `json:"row,omitempty"`
	Column       string `json:"column,omitempty"`
	FieldPath    string `json:"fieldPath,omitempty"`
	ExpectedType string `json:"expectedType,omitempty"`
}

//go:generate go tool stringer -type=Severity -trimprefix=Severity -output=severity_string.go

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// MarshalText renders the severity as its lower-case name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message string, loc Location) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  message,
		Location: loc,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message string, loc Location) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Location: loc,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message string, loc Location) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: SeverityInfo,
		Code:     code,
		Message:  message,
		Location: loc,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}

	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// ByCode returns the error diagnostics carrying the given code.
func (d *Diagnostics) ByCode(code string) []Diagnostic {
	return common.Filter(d.Errors, func(e Diagnostic) bool { return e.Code == code })
}

// Err folds all error diagnostics into a *multierror.Error, or nil if valid.
func (d *Diagnostics) Err() error {
	var result *multierror.Error

	for _, e := range d.Errors {
		result = multierror.Append(result, e)
	}

	return result.ErrorOrNil()
}

// Error implements error so a single diagnostic can travel inside a multierror.
func (d Diagnostic) Error() string {
	return d.String()
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	prefix := d.Location.String()

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if prefix != "" {
		return prefix + ": " + msg
	}

	return msg
}

// String renders the location as "sheet 1 row 3 column \"Name\"".
func (l Location) String() string {
	var parts []string

	if l.Row > 0 || l.Column != "" {
		parts = append(parts, fmt.Sprintf("sheet %d", l.Sheet+1))
	}

	if l.Row > 0 {
		parts = append(parts, fmt.Sprintf("row %d", l.Row))
	}

	if l.Column != "" {
		parts = append(parts, fmt.Sprintf("column %q", l.Column))
	}

	if l.FieldPath != "" {
		parts = append(parts, l.FieldPath)
	}

	return strings.Join(parts, " ")
}
