// Package test runs the portal CLI in-process so command tests exercise the
// same wiring as a shipped binary, including flag parsing and the pre-run
// setup.
package test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"openportal.dev/openportal/cli/cmd"
	"openportal.dev/openportal/cli/internal/flags/log"
)

type Options struct {
	Args        []string
	Output      io.Writer
	ErrorOutput io.Writer
}

type Option func(*Options)

// WithArgs sets the command line passed to the root command.
func WithArgs(args ...string) Option {
	return func(o *Options) {
		o.Args = args
	}
}

// WithOutput captures standard output of the command.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Output = w
	}
}

// WithErrorOutput captures the error stream of the command, which also
// carries the logs.
func WithErrorOutput(w io.Writer) Option {
	return func(o *Options) {
		o.ErrorOutput = w
	}
}

// Portal executes the CLI root command in-process and returns the executed
// command together with the execution error. Unless the arguments pick a log
// format themselves, logs are forced to JSON so that JSONLogReader can
// decode them.
func Portal(t *testing.T, opts ...Option) (*cobra.Command, error) {
	t.Helper()

	options := &Options{
		Output:      io.Discard,
		ErrorOutput: io.Discard,
	}
	for _, opt := range opts {
		opt(options)
	}

	args := options.Args
	if !slices.ContainsFunc(args, func(arg string) bool {
		return strings.HasPrefix(arg, "--"+log.FlagLogFormat)
	}) {
		args = append(append([]string{}, args...), "--"+log.FlagLogFormat+"="+log.FormatJSON)
	}

	root := cmd.New()
	root.SetArgs(args)
	root.SetOut(options.Output)
	root.SetErr(options.ErrorOutput)
	return root, root.ExecuteContext(t.Context())
}

// JSONLogReader captures the JSON log lines a command writes so tests can
// assert on them.
type JSONLogReader struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func NewJSONLogReader() *JSONLogReader {
	return &JSONLogReader{}
}

func (r *JSONLogReader) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

// List decodes the captured lines. Lines that are not JSON objects fail the
// decode; capture commands that print plain text on the error stream with a
// plain buffer instead.
func (r *JSONLogReader) List() ([]map[string]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(r.buf.Bytes()))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("log line %q is not valid JSON: %w", string(line), err)
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}
