package core

import (
	"fmt"
	"regexp"
)

// RegistryBuilder provides a fluent interface for assembling a detector
// registry, either from scratch or on top of the built-in catalog.
type RegistryBuilder struct {
	patterns []DetectorPattern
	errs     []error
}

// NewRegistryBuilder creates an empty registry builder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{}
}

// FromBuiltins seeds the builder with the built-in catalog so added
// patterns append after it.
func (b *RegistryBuilder) FromBuiltins() *RegistryBuilder {
	b.patterns = append(b.patterns, builtinPatterns()...)
	return b
}

// AddPattern appends a detector pattern. Compilation problems are collected
// and reported by Build.
func (b *RegistryBuilder) AddPattern(category Category, pattern string, severity Severity, description string) *RegistryBuilder {
	if _, err := ParseCategory(string(category)); err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("invalid pattern for %s: %w", category, err))
		return b
	}
	if severity.Rank() == 0 {
		b.errs = append(b.errs, fmt.Errorf("invalid severity for %s: %s", category, severity))
		return b
	}

	b.patterns = append(b.patterns, DetectorPattern{
		Category:    category,
		Regex:       re,
		Severity:    severity,
		Description: description,
	})
	return b
}

// Build constructs the final registry. It fails if any added pattern was
// invalid or if the registry would be empty.
func (b *RegistryBuilder) Build() (*Registry, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if len(b.patterns) == 0 {
		return nil, fmt.Errorf("registry must contain at least one pattern")
	}

	patterns := make([]DetectorPattern, len(b.patterns))
	copy(patterns, b.patterns)
	return &Registry{patterns: patterns}, nil
}
