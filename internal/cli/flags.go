package cli

import (
	"time"

	"cpt/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	Timeout    time.Duration
	KeepBinary bool
	NoCompile  bool
	Binary     string
	TUI        bool
	Quiet      bool
	Store      string
	NameFilter string
	TestCases  bool
	Verbose    bool
	Addr       string
	Dir        string
	Ext        string
	InputFile  string
	OutputFile string
	Force      bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Timeout:    f.Timeout,
		KeepBinary: f.KeepBinary || f.Binary != "",
		NoCompile:  f.NoCompile || f.Binary != "",
		TUI:        f.TUI,
		Quiet:      f.Quiet,
		Store:      f.Store,
		NameFilter: f.NameFilter,
		TestCases:  f.TestCases,
		Verbose:    f.Verbose,
		Addr:       f.Addr,
	}
}
