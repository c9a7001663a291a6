package sinks

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/arnavsurve/rowpilot/pkg/log"
	"github.com/arnavsurve/rowpilot/pkg/types"
)

// FileSink appends one JSON object per event to a run log. Each line carries
// the event's fields plus "level", "message", "where" (the row/action label
// the console shows) and, when known, "time".
//
// Writes are buffered; warnings and errors flush immediately so a failing
// row is on disk even if the process dies right after.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewFileSink truncates or creates path, creating its directory if needed.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory for %q: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("opening run log %q: %w", path, err)
	}
	buf := bufio.NewWriter(f)
	return &FileSink{file: f, buf: buf, enc: json.NewEncoder(buf)}, nil
}

func (s *FileSink) Write(event *log.LogEvent) error {
	record := make(map[string]any, len(event.Fields)+4)
	for k, v := range event.Fields {
		record[k] = v
	}
	record["level"] = event.Level.String()
	record["message"] = event.Message
	record["where"] = Label(event.Fields)
	if !event.Timestamp.IsZero() {
		record["time"] = event.Timestamp.Format(time.RFC3339Nano)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return fmt.Errorf("run log already closed")
	}
	if err := s.enc.Encode(record); err != nil {
		return fmt.Errorf("encoding run log entry: %w", err)
	}
	if event.Level >= types.WarnLevel {
		return s.buf.Flush()
	}
	return nil
}

// Close flushes buffered entries and closes the file. It is safe to call
// more than once.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	flushErr := s.buf.Flush()
	closeErr := s.file.Close()
	s.file = nil
	if flushErr != nil {
		return fmt.Errorf("flushing run log: %w", flushErr)
	}
	return closeErr
}
