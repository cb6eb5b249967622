// Package auditlog keeps an append-only CSV trail of applied mutations.
// It is an operator log, not persistence: the ledger state itself lives
// only in memory and is never rebuilt from this file.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Record is one row in the mutation log.
type Record struct {
	Timestamp time.Time
	Session   string
	Event     string
	EntityID  string
	Details   string
}

// Header is the CSV header for the mutation log.
const Header = "timestamp,session,event,entity_id,details"

const (
	numFields    = 5
	colTimestamp = 0
	colSession   = 1
	colEvent     = 2
	colEntityID  = 3
	colDetails   = 4
)

// MarshalRecord converts a Record to a CSV row.
func MarshalRecord(r Record) []string {
	row := make([]string, numFields)
	row[colTimestamp] = r.Timestamp.Format(time.RFC3339)
	row[colSession] = r.Session
	row[colEvent] = r.Event
	row[colEntityID] = r.EntityID
	row[colDetails] = r.Details
	return row
}

// UnmarshalRecord converts a CSV row to a Record.
func UnmarshalRecord(record []string) (Record, error) {
	if len(record) != numFields {
		return Record{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Record{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Record{
		Timestamp: ts,
		Session:   record[colSession],
		Event:     record[colEvent],
		EntityID:  record[colEntityID],
		Details:   record[colDetails],
	}, nil
}

// Log appends mutation records to a CSV file.
type Log struct {
	path string
}

// New creates a Log writing to path.
func New(path string) *Log {
	return &Log{path: path}
}

// Append writes records to the log file, creating it and the header if
// needed.
func (l *Log) Append(records ...Record) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating audit log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, r := range records {
		if err := cw.Write(MarshalRecord(r)); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all records from the log file. Returns an empty slice if
// the file does not exist.
func (l *Log) Read() ([]Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readRecords(f)
}

func readRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}

	if len(rows) <= 1 {
		return nil, nil
	}

	var records []Record
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
