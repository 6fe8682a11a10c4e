package descriptor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalidConfig marks a page configuration that failed validation or could
// not be decoded. Use errors.Is to discriminate it from other failure kinds.
var ErrInvalidConfig = errors.New("invalid page config")

// Problem describes a single validation failure.
type Problem struct {
	// Field names the offending field, e.g. "version" or "widgets[2].id".
	Field string
	// Reason states what is wrong with the field.
	Reason string
}

// ValidationError aggregates every problem found in one validation pass. It
// matches ErrInvalidConfig under errors.Is.
type ValidationError struct {
	Problems []Problem
}

var _ error = (*ValidationError)(nil)

func (e *ValidationError) Error() string {
	reasons := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		reasons = append(reasons, fmt.Sprintf("%s: %s", p.Field, p.Reason))
	}
	return fmt.Sprintf("invalid page config: %s", strings.Join(reasons, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Fields returns the names of all offending fields.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		fields = append(fields, p.Field)
	}
	return fields
}

// Validate checks the structural integrity of a page configuration. It is
// pure: no I/O, no mutation of the config. A nil return means the config may
// be cached and rendered; otherwise the returned *ValidationError lists every
// offending field.
func Validate(config *PageConfig) error {
	if config == nil {
		return &ValidationError{Problems: []Problem{{Field: "config", Reason: "must not be nil"}}}
	}

	var problems []Problem
	if config.ID == "" {
		problems = append(problems, Problem{Field: "id", Reason: "must not be empty"})
	}
	if config.Version == "" {
		problems = append(problems, Problem{Field: "version", Reason: "must not be empty"})
	} else if _, err := semver.NewVersion(config.Version); err != nil {
		problems = append(problems, Problem{Field: "version", Reason: fmt.Sprintf("must be a semantic version: %v", err)})
	}
	if len(config.Layout) == 0 {
		problems = append(problems, Problem{Field: "layout", Reason: "must be present"})
	} else if !isJSONObject(config.Layout) {
		problems = append(problems, Problem{Field: "layout", Reason: "must be a JSON object"})
	}
	if config.Widgets == nil {
		problems = append(problems, Problem{Field: "widgets", Reason: "must be present"})
	} else {
		seen := make(map[string]string, len(config.Widgets))
		problems = append(problems, validateWidgets(config.Widgets, "widgets", seen)...)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func validateWidgets(widgets []Widget, path string, seen map[string]string) []Problem {
	var problems []Problem
	for i := range widgets {
		widget := &widgets[i]
		widgetPath := fmt.Sprintf("%s[%d]", path, i)
		if widget.ID == "" {
			problems = append(problems, Problem{Field: widgetPath + ".id", Reason: "must not be empty"})
		} else if first, duplicate := seen[widget.ID]; duplicate {
			problems = append(problems, Problem{
				Field:  widgetPath + ".id",
				Reason: fmt.Sprintf("duplicates %s, widget ids must be unique within a page", first),
			})
		} else {
			seen[widget.ID] = widgetPath
		}
		if widget.Type == "" {
			problems = append(problems, Problem{Field: widgetPath + ".type", Reason: "must not be empty"})
		}
		problems = append(problems, validateWidgets(widget.Children, widgetPath+".children", seen)...)
	}
	return problems
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Valid(raw)
}
