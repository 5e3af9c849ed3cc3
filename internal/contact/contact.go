// Package contact normalizes raw log rows into typed Contact records.
package contact

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Contact is one normalized log entry. Built once from a raw row,
// never mutated afterwards.
type Contact struct {
	Call    string
	When    time.Time // date + time-of-day, minute precision, UTC
	FreqMHz float64
	Mode    string
	Submode string
	RSTSent string
	RSTRcvd string
	Band    string // taken from the row when present, derived from frequency otherwise
	Comment string
	POTARef string
}

// DateDisplay formats the contact date for card rendering.
func (c Contact) DateDisplay() string {
	return c.When.Format("02-Jan-2006")
}

// TimeDisplay formats the contact time as 4-digit UTC.
func (c Contact) TimeDisplay() string {
	return c.When.Format("1504")
}

// FreqDisplay formats the frequency in MHz with fixed precision.
func (c Contact) FreqDisplay() string {
	return fmt.Sprintf("%.3f", c.FreqMHz)
}

// ParseError describes a rejected row. Row is 1-based and stamped by
// NormalizeAll; a bare Normalize leaves it at zero.
type ParseError struct {
	Row   int
	Field string
	Value string
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: field %q: %s (value %q)", e.Row, e.Field, e.Msg, e.Value)
	}
	return fmt.Sprintf("field %q: %s (value %q)", e.Field, e.Msg, e.Value)
}

// DefaultHzThreshold is the magnitude above which a frequency value is
// interpreted as Hz rather than MHz.
const DefaultHzThreshold = 1000

// Options controls normalization of a full row sequence.
type Options struct {
	// Strict aborts on the first bad row instead of skipping it.
	Strict bool
	// HzThreshold overrides DefaultHzThreshold when > 0.
	HzThreshold float64
}

var dateFormats = []string{"2006-01-02", "01/02/2006", "02/01/2006", "20060102"}

var requiredFields = []string{"call", "qso_date", "time_on", "freq", "mode"}

// Normalize converts a single raw row (lower-cased column name to value)
// into a Contact. The returned error is always a *ParseError.
func Normalize(row map[string]string, hzThreshold float64) (Contact, error) {
	if hzThreshold <= 0 {
		hzThreshold = DefaultHzThreshold
	}

	for _, f := range requiredFields {
		if strings.TrimSpace(row[f]) == "" {
			return Contact{}, &ParseError{Field: f, Msg: "required field missing"}
		}
	}

	date, err := parseDate(strings.TrimSpace(row["qso_date"]))
	if err != nil {
		return Contact{}, err
	}

	hour, minute, err := parseTime(strings.TrimSpace(row["time_on"]))
	if err != nil {
		return Contact{}, err
	}

	freq, err := parseFreq(strings.TrimSpace(row["freq"]), hzThreshold)
	if err != nil {
		return Contact{}, err
	}

	return Contact{
		Call:    strings.ToUpper(strings.TrimSpace(row["call"])),
		When:    time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC),
		FreqMHz: freq,
		Mode:    strings.TrimSpace(row["mode"]),
		Submode: strings.TrimSpace(row["submode"]),
		RSTSent: strings.TrimSpace(row["rst_sent"]),
		RSTRcvd: strings.TrimSpace(row["rst_rcvd"]),
		Band:    strings.TrimSpace(row["band"]),
		Comment: strings.TrimSpace(row["comment_intl"]),
		POTARef: strings.ToUpper(strings.TrimSpace(row["pota_ref"])),
	}, nil
}

// NormalizeAll converts a row sequence in order. In strict mode the first
// bad row aborts the run; otherwise bad rows are collected and skipped so
// the caller can report them.
func NormalizeAll(rows []map[string]string, opts Options) ([]Contact, []*ParseError, error) {
	contacts := make([]Contact, 0, len(rows))
	var skipped []*ParseError

	for i, row := range rows {
		c, err := Normalize(row, opts.HzThreshold)
		if err != nil {
			pe := err.(*ParseError)
			pe.Row = i + 1
			if opts.Strict {
				return nil, nil, pe
			}
			skipped = append(skipped, pe)
			continue
		}
		contacts = append(contacts, c)
	}

	return contacts, skipped, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Field: "date", Value: s, Msg: "unrecognized date format"}
}

func parseTime(s string) (int, int, error) {
	clean := strings.NewReplacer(":", "", ".", "").Replace(s)
	if len(clean) == 3 {
		clean = "0" + clean
	}
	if len(clean) != 4 {
		return 0, 0, &ParseError{Field: "time", Value: s, Msg: "expected HHMM or HH:MM"}
	}
	for _, r := range clean {
		if r < '0' || r > '9' {
			return 0, 0, &ParseError{Field: "time", Value: s, Msg: "expected HHMM or HH:MM"}
		}
	}
	hour, err := strconv.Atoi(clean[:2])
	if err != nil {
		return 0, 0, &ParseError{Field: "time", Value: s, Msg: "expected HHMM or HH:MM"}
	}
	minute, err := strconv.Atoi(clean[2:])
	if err != nil {
		return 0, 0, &ParseError{Field: "time", Value: s, Msg: "expected HHMM or HH:MM"}
	}
	if hour > 23 || minute > 59 {
		return 0, 0, &ParseError{Field: "time", Value: s, Msg: "time out of range"}
	}
	return hour, minute, nil
}

func parseFreq(s string, hzThreshold float64) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseError{Field: "freq", Value: s, Msg: "not a number"}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ParseError{Field: "freq", Value: s, Msg: "frequency must be finite"}
	}
	if f <= 0 {
		return 0, &ParseError{Field: "freq", Value: s, Msg: "frequency must be positive"}
	}
	// Values at or above the threshold are Hz; log exports are inconsistent
	// about units, but ham bands below 1000 MHz and inputs above 1000 Hz
	// never overlap in practice.
	if f >= hzThreshold {
		f /= 1e6
	}
	return f, nil
}
