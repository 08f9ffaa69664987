// Package text provides line-oriented text utilities.
package text

import (
	"errors"
	"strings"
)

// ErrEmptyInput is returned when there is no text to process.
var ErrEmptyInput = errors.New("no text to process")

// Result describes the outcome of removing duplicate lines.
type Result struct {
	Output  string `json:"output"`
	Total   int    `json:"total"`
	Unique  int    `json:"unique"`
	Removed int    `json:"removed"`
}

// RemoveDuplicateLines keeps the first occurrence of every line, preserving
// order. Lines are compared exactly, so whitespace and case are significant.
// Input consisting only of whitespace fails with ErrEmptyInput.
func RemoveDuplicateLines(input string) (Result, error) {
	if strings.TrimSpace(input) == "" {
		return Result{}, ErrEmptyInput
	}

	lines := strings.Split(input, "\n")
	seen := make(map[string]struct{}, len(lines))
	unique := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		unique = append(unique, line)
	}

	return Result{
		Output:  strings.Join(unique, "\n"),
		Total:   len(lines),
		Unique:  len(unique),
		Removed: len(lines) - len(unique),
	}, nil
}
