package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cpt/internal/config"
	"cpt/internal/domain"
)

// suiteFile is the on-disk test case format
type suiteFile struct {
	NumCases int      `json:"numCases"`
	Inputs   []string `json:"inputs"`
	Outputs  []string `json:"outputs"`
}

// JSONStorage stores each source's test cases in a JSON file next to it
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes <source><TestCaseExt>
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

// Load reads the test case file of source
func (s *JSONStorage) Load(source string) (*domain.TestSuite, error) {
	path := s.cfg.TestCasePath(source)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read test cases: %w", err)
	}
	return DecodeSuite(data)
}

// Save writes the test case file of source
func (s *JSONStorage) Save(source string, suite *domain.TestSuite) error {
	data, err := EncodeSuite(suite)
	if err != nil {
		return err
	}

	path := s.cfg.TestCasePath(source)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create test case dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write test cases: %w", err)
	}
	return nil
}

// Append adds tc to the end of the suite of source
func (s *JSONStorage) Append(source string, tc domain.TestCase) (int, error) {
	return appendCase(s, source, tc)
}

// EncodeSuite renders suite in the test case file format
func EncodeSuite(suite *domain.TestSuite) ([]byte, error) {
	file := suiteFile{
		NumCases: suite.Count(),
		Inputs:   suite.Inputs(),
		Outputs:  suite.Outputs(),
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal test cases: %w", err)
	}
	return data, nil
}

// DecodeSuite parses the test case file format
func DecodeSuite(data []byte) (*domain.TestSuite, error) {
	var file suiteFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse test cases: %w", err)
	}
	if len(file.Inputs) != len(file.Outputs) {
		return nil, fmt.Errorf("parse test cases: %d inputs but %d outputs", len(file.Inputs), len(file.Outputs))
	}
	if file.NumCases != len(file.Inputs) {
		return nil, fmt.Errorf("parse test cases: numCases is %d but %d cases are present", file.NumCases, len(file.Inputs))
	}
	return domain.NewTestSuite(file.Inputs, file.Outputs), nil
}
