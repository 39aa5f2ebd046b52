// Package languages holds the selectable language catalog and the default
// source-language heuristic used when the user only picks a target.
package languages

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Language is one selectable entry.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Catalog validates language codes and resolves display names. The built-in
// set can be replaced by a catalog file of "code = Name" lines.
type Catalog struct {
	names map[string]string
}

var builtin = map[string]string{
	"ar": "Arabic",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"hi": "Hindi",
	"ja": "Japanese",
	"pt": "Portuguese",
	"ru": "Russian",
	"zh": "Chinese",
}

// NewCatalog loads the catalog from path when it exists, falling back to
// the built-in set when path is empty or missing.
func NewCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return &Catalog{names: builtin}, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Catalog{names: builtin}, nil
		}
		return nil, fmt.Errorf("failed to read language catalog %q: %w", path, err)
	}

	names, err := parseCatalog(string(contents))
	if err != nil {
		return nil, fmt.Errorf("failed to parse language catalog %q: %w", path, err)
	}
	return &Catalog{names: names}, nil
}

func parseCatalog(contents string) (map[string]string, error) {
	names := make(map[string]string)
	for i, line := range strings.Split(contents, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		code, name, ok := strings.Cut(line, "=")
		code = strings.TrimSpace(code)
		name = strings.TrimSpace(name)
		if !ok || code == "" || name == "" {
			return nil, fmt.Errorf("line %d: expected \"code = Name\"", i+1)
		}
		names[strings.ToLower(code)] = name
	}
	if len(names) == 0 {
		return nil, errors.New("catalog holds no languages")
	}
	return names, nil
}

// Valid reports whether code is a selectable language.
func (c *Catalog) Valid(code string) bool {
	_, ok := c.names[strings.ToLower(strings.TrimSpace(code))]
	return ok
}

// Name returns the display name for a code, or the code itself when unknown.
func (c *Catalog) Name(code string) string {
	if name, ok := c.names[strings.ToLower(strings.TrimSpace(code))]; ok {
		return name
	}
	return code
}

// All returns the catalog sorted by code.
func (c *Catalog) All() []Language {
	out := make([]Language, 0, len(c.names))
	for code, name := range c.names {
		out = append(out, Language{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// DefaultSource guesses a source language that differs from the chosen
// target. This is a non-binding default, not detection: an English target
// defaults the source to Spanish, anything else defaults to English.
func DefaultSource(target string) string {
	if strings.ToLower(strings.TrimSpace(target)) == "en" {
		return "es"
	}
	return "en"
}
