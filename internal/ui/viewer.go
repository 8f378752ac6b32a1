package ui

import "cpt/internal/domain"

// Viewer displays a run while it is in progress.
// OnResult may be called from any goroutine; Run blocks until the viewer is closed.
type Viewer interface {
	OnResult(rs *domain.ResultSet, final bool)
	Run() error
	Stop()
}
