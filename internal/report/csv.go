package report

import (
	"encoding/csv"
	"io"

	"github.com/ppiankov/maciespectre/internal/findings"
)

// CSVSink streams findings as CSV rows in findings.Header order.
type CSVSink struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewCSVSink creates a CSV sink on w.
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w)}
}

func (s *CSVSink) header() error {
	if s.wroteHeader {
		return nil
	}
	s.wroteHeader = true
	return s.w.Write(findings.Header)
}

// Write appends one row, preceded by the header on first use.
func (s *CSVSink) Write(r findings.Record) error {
	if err := s.header(); err != nil {
		return err
	}
	return s.w.Write(r.Row())
}

// Close writes the header if no row was written and flushes.
func (s *CSVSink) Close() error {
	if err := s.header(); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}
