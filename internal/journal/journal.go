// Package journal keeps an append-only NDJSON audit trail of committed
// transitions. The journal is informational: the scheduler's idempotence
// comes from persisted timestamps, not from replaying this file.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/anhofmann/dsar/internal/request"
)

// Entry records one committed transition
type Entry struct {
	Time      time.Time      `json:"time"`
	RequestID string         `json:"request_id"`
	From      request.Status `json:"from"`
	To        request.Status `json:"to"`
	Trigger   string         `json:"trigger"`
	Note      string         `json:"note,omitempty"`
}

// Journal appends entries to an NDJSON file
type Journal struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
	path string
}

// Open creates or opens the journal file for appending
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return &Journal{file: file, enc: json.NewEncoder(file), path: path}, nil
}

// Record appends one entry
func (j *Journal) Record(e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.enc.Encode(e); err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	return nil
}

// Close closes the underlying file
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

// Read parses all entries in a journal file. A missing file is an empty
// history, not an error.
func Read(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("journal line %d: %w", lineNum, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading journal: %w", err)
	}
	return entries, nil
}

// History returns the entries for one request, in file order
func History(path, requestID string) ([]Entry, error) {
	all, err := Read(path)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range all {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out, nil
}
