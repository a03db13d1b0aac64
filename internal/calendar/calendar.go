// Package calendar reads the line-oriented holiday calendar file. Each record
// carries a Date (DD-MM-YYYY) and a Prompt (the holiday name); lookups are an
// exact string match on the date.
package calendar

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "02-01-2006"

// Entry is one row of the calendar file.
type Entry struct {
	Date string
	Name string
}

// Source reads holiday entries from a CSV file with Date and Prompt columns.
type Source struct {
	path string
}

func NewSource(path string) *Source {
	return &Source{path: path}
}

// TodayDate formats the current date in the calendar's layout.
func TodayDate() string {
	return time.Now().Format(DateLayout)
}

// Today returns the entry matching the current date, or nil when there is none.
func (s *Source) Today() (*Entry, error) {
	return s.Lookup(TodayDate())
}

// Lookup scans the file for the first entry matching date. A missing file is
// an error; malformed rows are skipped.
func (s *Source) Lookup(date string) (*Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open holiday calendar: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read holiday calendar: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	dateCol, promptCol := -1, -1
	for i, name := range records[0] {
		switch strings.TrimSpace(name) {
		case "Date":
			dateCol = i
		case "Prompt":
			promptCol = i
		}
	}
	if dateCol < 0 || promptCol < 0 {
		return nil, fmt.Errorf("holiday calendar %s is missing Date/Prompt columns", s.path)
	}

	for _, row := range records[1:] {
		if len(row) <= dateCol || len(row) <= promptCol {
			continue
		}
		if strings.TrimSpace(row[dateCol]) == date {
			return &Entry{Date: date, Name: strings.TrimSpace(row[promptCol])}, nil
		}
	}
	return nil, nil
}
