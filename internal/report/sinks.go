package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ppiankov/maciespectre/internal/findings"
)

// File formats of a findings export.
const (
	FileCSV        = "csv"
	FileJSON       = "json"
	FileSARIF      = "sarif"
	FileSpectreHub = "spectrehub"
)

// FindingsSink receives exported records and completes the file on Close.
type FindingsSink interface {
	findings.Sink
	Close() error
}

// FindingsFile is the JSON findings export. Baselines are read back from it.
type FindingsFile struct {
	Meta
	Records []findings.Record `json:"records"`
}

// RecordBuffer keeps every record in memory.
type RecordBuffer struct {
	Records []findings.Record
}

// Write appends r.
func (b *RecordBuffer) Write(r findings.Record) error {
	b.Records = append(b.Records, r)
	return nil
}

type bufferedSink struct {
	RecordBuffer
	flush func([]findings.Record) error
}

func (s *bufferedSink) Close() error {
	return s.flush(s.Records)
}

// NewFindingsSink returns the sink writing format to w. CSV is streamed;
// the document formats are written on Close.
func NewFindingsSink(format string, w io.Writer, meta Meta) (FindingsSink, error) {
	switch format {
	case "", FileCSV:
		return NewCSVSink(w), nil
	case FileJSON:
		return &bufferedSink{flush: func(records []findings.Record) error {
			if records == nil {
				records = []findings.Record{}
			}
			file := FindingsFile{Meta: meta, Records: records}
			file.Timestamp = file.Timestamp.UTC()
			encoder := json.NewEncoder(w)
			encoder.SetIndent("", "  ")
			return encoder.Encode(file)
		}}, nil
	case FileSARIF:
		return &bufferedSink{flush: func(records []findings.Record) error {
			return NewSARIFReporter(w).Generate(meta, records)
		}}, nil
	case FileSpectreHub:
		return &bufferedSink{flush: func(records []findings.Record) error {
			return NewSpectreHubReporter(w).Generate(meta, records)
		}}, nil
	}
	return nil, fmt.Errorf("unsupported findings format: %s (supported: csv, json, sarif, spectrehub)", format)
}

type teeSink []findings.Sink

func (t teeSink) Write(r findings.Record) error {
	for _, s := range t {
		if err := s.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Tee writes every record to each sink in order, stopping at the first error.
func Tee(sinks ...findings.Sink) findings.Sink {
	return teeSink(sinks)
}
