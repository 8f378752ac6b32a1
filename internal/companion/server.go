// Package companion receives problems pushed by the Competitive Companion
// browser extension and stores their sample tests.
package companion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cpt/internal/discovery"
	"cpt/internal/domain"
)

const shutdownTimeout = 5 * time.Second

// Test is one sample test as sent by the extension
type Test struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Problem is the payload the extension posts
type Problem struct {
	Name      string `json:"name"`
	Group     string `json:"group"`
	URL       string `json:"url"`
	TimeLimit int    `json:"timeLimit"`
	Tests     []Test `json:"tests"`
}

// Saver stores a suite for a source
type Saver interface {
	Save(source string, suite *domain.TestSuite) error
}

// Options controls where received problems are written
type Options struct {
	// Dir is the directory sources are created in
	Dir string
	// Ext is the extension of created sources, including the dot
	Ext string
	// OnProblem is called after a problem has been stored
	OnProblem func(source string, p Problem)
}

// Server accepts problem pushes over HTTP
type Server struct {
	store  Saver
	opts   Options
	logger *zap.Logger
	engine *gin.Engine
}

// NewServer creates a new Server
func NewServer(store Saver, opts Options, logger *zap.Logger) *Server {
	if opts.Ext == "" {
		opts.Ext = ".cpp"
	}
	s := &Server{store: store, opts: opts, logger: logger}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.POST("/", s.handleProblem)
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine = engine
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("companion server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("companion server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("companion server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) handleProblem(c *gin.Context) {
	var p Problem
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid problem payload: " + err.Error()})
		return
	}

	source, err := s.Store(p)
	if err != nil {
		s.logger.Error("failed to store problem", zap.String("name", p.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": source, "cases": len(p.Tests)})
}

// Store saves the tests of p and creates its source file. It returns the source path.
func (s *Server) Store(p Problem) (string, error) {
	source := filepath.Join(s.opts.Dir, FileName(p.Name)+s.opts.Ext)

	cases := make([]domain.TestCase, len(p.Tests))
	for i, t := range p.Tests {
		cases[i] = domain.TestCase{Input: t.Input, ExpectedOutput: t.Output}
	}
	if err := s.store.Save(source, &domain.TestSuite{Cases: cases}); err != nil {
		return "", fmt.Errorf("failed to save test cases: %w", err)
	}

	if err := s.ensureSource(source, p.URL); err != nil {
		return "", err
	}

	s.logger.Info("problem received",
		zap.String("name", p.Name),
		zap.String("source", source),
		zap.Int("cases", len(cases)))
	if s.opts.OnProblem != nil {
		s.opts.OnProblem(source, p)
	}
	return source, nil
}

// ensureSource creates source with a URL header unless it already exists
func (s *Server) ensureSource(source, url string) error {
	if _, err := os.Stat(source); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", source, err)
	}
	if url == "" {
		f, err := os.OpenFile(source, os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", source, err)
		}
		return f.Close()
	}
	return discovery.PrependURL(source, url)
}

// FileName turns a problem name into a safe file name.
// "A. Watermelon" becomes "A_Watermelon".
func FileName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	if b.Len() == 0 {
		return "problem"
	}
	return b.String()
}
