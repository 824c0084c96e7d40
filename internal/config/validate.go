package config

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// FieldError is a validation failure for one configuration field.
type FieldError struct {
	Field   string // dotted path, e.g. "languages.python.symbol"
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "invalid configuration"
	case 1:
		return "invalid configuration: " + e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid configuration (%d errors):", len(e.Errors))
	for _, fe := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(fe.Error())
	}
	return sb.String()
}

var (
	symbolRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	langNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_+-]*$`)
)

// Validate checks every field and returns a ValidationError listing all problems.
func (c *Config) Validate() error {
	var errs []FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch strings.ToLower(c.Columns) {
	case "byte", "char":
	default:
		add("columns", "must be byte or char, got %q", c.Columns)
	}
	switch strings.ToLower(c.Color) {
	case "auto", "always", "never":
	default:
		add("color", "must be auto, always or never, got %q", c.Color)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		add("log_level", "%v", err)
	}
	if c.WatchDebounce < 0 {
		add("watch_debounce", "must not be negative")
	}
	for i, p := range c.GrammarPaths {
		if strings.TrimSpace(p) == "" {
			add(fmt.Sprintf("grammar_paths[%d]", i), "must not be empty")
		}
	}

	names := make([]string, 0, len(c.Languages))
	for name := range c.Languages {
		names = append(names, name)
	}
	sort.Strings(names)

	owner := make(map[string]string)
	for _, name := range names {
		lc := c.Languages[name]
		field := "languages." + name
		if !langNameRe.MatchString(name) {
			add(field, "invalid language name")
		}
		if lc.Symbol != "" && !symbolRe.MatchString(lc.Symbol) {
			add(field+".symbol", "%q is not a C identifier", lc.Symbol)
		}
		for _, ext := range lc.Extensions {
			norm := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
			if norm == "" {
				add(field+".extensions", "empty extension")
				continue
			}
			if prev, ok := owner[norm]; ok {
				add(field+".extensions", "extension .%s already claimed by %s", norm, prev)
				continue
			}
			owner[norm] = name
		}
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
