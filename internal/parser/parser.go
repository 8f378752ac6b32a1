// Package parser extracts sample test cases from problem statement pages.
package parser

import (
	"errors"
	"io"

	"cpt/internal/domain"
)

var (
	// ErrNoSamples is returned when a page contains no sample tests
	ErrNoSamples = errors.New("no sample tests found")
	// ErrUnsupportedURL is returned for pages no parser understands
	ErrUnsupportedURL = errors.New("unsupported problem URL")
)

// Parser reads a problem page and returns its sample tests in page order
type Parser interface {
	Parse(r io.Reader) ([]domain.TestCase, error)
}
