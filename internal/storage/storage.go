package storage

import (
	"errors"
	"fmt"

	"cpt/internal/config"
	"cpt/internal/domain"
)

// ErrNotFound is returned by Load when no test cases are stored for a source
var ErrNotFound = errors.New("no test cases stored")

// Storage persists and loads the test cases of a source file
type Storage interface {
	Load(source string) (*domain.TestSuite, error)
	Save(source string, suite *domain.TestSuite) error
	// Append adds one case to the end of the stored suite, creating it if needed
	Append(source string, tc domain.TestCase) (int, error)
}

// New returns the Storage selected by cfg.Store
func New(cfg *config.Config) (Storage, error) {
	switch cfg.Store {
	case "", config.StoreFile:
		return NewJSONStorage(cfg), nil
	case config.StoreMySQL:
		return NewMySQLStorage(cfg)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// appendCase loads the suite for source (empty when absent), appends tc and saves it
func appendCase(st Storage, source string, tc domain.TestCase) (int, error) {
	suite, err := st.Load(source)
	if errors.Is(err, ErrNotFound) {
		suite = &domain.TestSuite{}
	} else if err != nil {
		return 0, err
	}
	suite.Cases = append(suite.Cases, tc)
	if err := st.Save(source, suite); err != nil {
		return 0, err
	}
	return suite.Count(), nil
}
