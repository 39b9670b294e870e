// Package deps verifies that external executables are installed.
package deps

import (
	"fmt"
	"io"
	"os/exec"
)

// Checker verifies that required and optional executables are in PATH.
type Checker struct {
	required []string
	optional []string
	lookPath func(string) (string, error)
}

// NewChecker creates a checker for the given required executables.
func NewChecker(required ...string) *Checker {
	return &Checker{required: required, lookPath: exec.LookPath}
}

// Optional adds executables whose absence only degrades functionality.
func (c *Checker) Optional(names ...string) *Checker {
	c.optional = append(c.optional, names...)
	return c
}

// IsAvailable checks if a single executable is available.
func (c *Checker) IsAvailable(name string) bool {
	_, err := c.lookPath(name)
	return err == nil
}

// CheckAll returns a MissingDepsError listing the missing required executables.
func (c *Checker) CheckAll() error {
	return c.Check(io.Discard)
}

// Check reports the status of every executable to w and returns an error
// if a required one is missing.
func (c *Checker) Check(w io.Writer) error {
	var missing []string

	for _, dep := range c.required {
		if c.IsAvailable(dep) {
			fmt.Fprintf(w, "[OK] %s\n", dep)
			continue
		}
		fmt.Fprintf(w, "[ERROR] '%s' not found in PATH\n", dep)
		fmt.Fprintf(w, "[INFO]  Install '%s' and retry\n", dep)
		missing = append(missing, dep)
	}

	for _, dep := range c.optional {
		if c.IsAvailable(dep) {
			fmt.Fprintf(w, "[OK] %s\n", dep)
		} else {
			fmt.Fprintf(w, "[WARN] '%s' not found in PATH, continuing without it\n", dep)
		}
	}

	if len(missing) > 0 {
		return &MissingDepsError{Dependencies: missing}
	}
	return nil
}

// MissingDepsError is returned when required executables are missing.
type MissingDepsError struct {
	Dependencies []string
}

func (e *MissingDepsError) Error() string {
	return fmt.Sprintf("missing dependencies: %v", e.Dependencies)
}
