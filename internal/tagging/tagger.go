// Package tagging embeds archival metadata into MP4-family audio files via
// the AtomicParsley command-line tool. Each tag field is written in its own
// invocation so a field the tool rejects never blocks the remaining fields.
package tagging

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// RDNSAtomName is the freeform atom carrying the complete piece JSON.
const RDNSAtomName = "alltihop_json"

// RDNSAtomDomain is the reverse-DNS domain AtomicParsley files the atom under.
const RDNSAtomDomain = "com.apple.iTunes"

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

// Option configures the tagger.
type Option func(*Tagger)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(t *Tagger) {
		if exec != nil {
			t.exec = exec
		}
	}
}

// Request carries everything to embed into one audio file.
type Request struct {
	Title     string
	Artist    string
	Comment   string
	CreatedAt string
	Tempo     string
	CoverPath string
	PieceJSON []byte
}

// FieldResult reports the outcome of writing one tag field.
type FieldResult struct {
	Field string
	Err   error
}

// Result is the per-file tagging outcome.
type Result struct {
	Audio  string
	Fields []FieldResult
}

// Failed counts fields that could not be written.
func (r *Result) Failed() int {
	count := 0
	for _, field := range r.Fields {
		if field.Err != nil {
			count++
		}
	}
	return count
}

// Tagger wraps AtomicParsley CLI interactions.
type Tagger struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a tagger.
func New(binary string, timeoutSeconds int, opts ...Option) (*Tagger, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("tagging binary required")
	}
	tagger := &Tagger{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(tagger)
	}
	return tagger, nil
}

// Tag writes the request's fields into the audio file one at a time and
// reports per-field success. It only fails outright when the file cannot be
// tagged at all (wrong container) or the context ends.
func (t *Tagger) Tag(ctx context.Context, audioPath string, req Request) (*Result, error) {
	if !CanTag(audioPath) {
		return nil, fmt.Errorf("%s is not an MP4-family file", audioPath)
	}

	tagCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		tagCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	result := &Result{Audio: audioPath}
	for _, field := range t.fields(req) {
		if err := tagCtx.Err(); err != nil {
			return result, err
		}
		args := append([]string{audioPath}, field.args...)
		args = append(args, "--overWrite")
		_, err := t.exec.Run(tagCtx, t.binary, args)
		result.Fields = append(result.Fields, FieldResult{Field: field.name, Err: err})
	}
	return result, nil
}

type tagField struct {
	name string
	args []string
}

func (t *Tagger) fields(req Request) []tagField {
	fields := []tagField{
		{name: "title", args: []string{"--title", req.Title}},
		{name: "artist", args: []string{"--artist", req.Artist}},
	}
	if req.Comment != "" {
		fields = append(fields, tagField{name: "comment", args: []string{"--comment", req.Comment}})
	}
	if created := strings.TrimSpace(req.CreatedAt); created != "" {
		fields = append(fields, tagField{name: "year", args: []string{"--year", created}})
	}
	if bpm, ok := ParseBPM(req.Tempo); ok {
		fields = append(fields, tagField{name: "bpm", args: []string{"--bpm", strconv.Itoa(bpm)}})
	}
	if req.CoverPath != "" {
		fields = append(fields, tagField{name: "artwork", args: []string{"--artwork", req.CoverPath}})
	}
	if len(req.PieceJSON) > 0 {
		fields = append(fields, tagField{name: RDNSAtomName, args: []string{
			"--rDNSatom", string(req.PieceJSON),
			"name=" + RDNSAtomName,
			"domain=" + RDNSAtomDomain,
		}})
	}
	return fields
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(output))
		if trimmed != "" {
			return string(output), fmt.Errorf("%s: %w (%s)", binary, err, trimmed)
		}
		return string(output), fmt.Errorf("%s: %w", binary, err)
	}
	return string(output), nil
}
