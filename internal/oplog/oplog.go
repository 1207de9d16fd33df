package oplog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Record is one applied rename. The log file is the single authoritative
// history of filesystem mutations performed by this tool: every record
// corresponds to a state where Dst exists and Src either does not exist or
// holds a legacy link/copy of Dst.
type Record struct {
	Kind       string `json:"kind"`
	ShortID    string `json:"short_id"`
	Title      string `json:"title"`
	Src        string `json:"src"`
	Dst        string `json:"dst"`
	LegacyMode string `json:"legacy_mode"`

	// Audit fields; undo ignores them and logs from older runs may omit them.
	LegacyResult string `json:"legacy_result,omitempty"`
	RunID        string `json:"run_id,omitempty"`
	AppliedAt    string `json:"applied_at,omitempty"`
}

// Appender writes records to an append-only JSONL file, one line per applied
// operation, synced after every write so a crash mid-run never loses
// completed operations.
type Appender struct {
	file *os.File
	path string
}

// OpenAppender opens (creating if needed) the log file for appending.
func OpenAppender(path string) (*Appender, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open rename log: %w", err)
	}
	return &Appender{file: file, path: path}, nil
}

// Append writes one record and flushes it to stable storage.
func (a *Appender) Append(record Record) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode log record: %w", err)
	}
	line = append(line, '\n')
	if _, err := a.file.Write(line); err != nil {
		return fmt.Errorf("append log record: %w", err)
	}
	return a.file.Sync()
}

// Path returns the log file location.
func (a *Appender) Path() string { return a.path }

// Close releases the log handle.
func (a *Appender) Close() error {
	if a == nil || a.file == nil {
		return nil
	}
	return a.file.Close()
}

// ReadLog parses the log file into records, in file (chronological) order.
// Blank and malformed lines are skipped; their count is returned so callers
// can surface it.
func ReadLog(path string) ([]Record, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	var records []Record
	skipped := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			skipped++
			continue
		}
		var record Record
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			skipped++
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("read rename log: %w", err)
	}
	return records, skipped, nil
}
