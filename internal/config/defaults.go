package config

import "time"

const (
	// DefaultProjectPath is the default working directory
	DefaultProjectPath = "."
	// DefaultConfigFile is the optional project config file name
	DefaultConfigFile = "cpt.yaml"
	// DefaultTestCaseExt is appended to a source path to locate its test cases
	DefaultTestCaseExt = ".tcs"
	// DefaultTimeout is the wall-clock limit for a single case
	DefaultTimeout = 10 * time.Second
	// DefaultOutputLimit is the number of output characters after which a run is aborted
	DefaultOutputLimit = 10000
	// DefaultStore is the test case storage backend
	DefaultStore = StoreFile
	// DefaultCompanionAddr is where Competitive Companion pushes problems
	DefaultCompanionAddr = "127.0.0.1:27121"
	// DefaultLogLevel keeps diagnostics quiet unless asked for
	DefaultLogLevel = "warn"
	// DefaultLogFormat is the log encoder
	DefaultLogFormat = "console"
)

// Storage backends
const (
	StoreFile  = "file"
	StoreMySQL = "mysql"
)

// DefaultCompilers maps a source extension to its compile command template.
// {src} and {bin} are replaced with the source and binary paths.
var DefaultCompilers = map[string]string{
	".cpp": "g++ -std=c++17 -O2 -o {bin} {src}",
	".cc":  "g++ -std=c++17 -O2 -o {bin} {src}",
	".c":   "gcc -std=c11 -O2 -o {bin} {src} -lm",
}

// DefaultPathsToIgnore are the directories skipped when scanning for sources
var DefaultPathsToIgnore = []string{
	"node_modules",
	"vendor",
	"build",
	"bin",
}

// DefaultMySQL holds the connection defaults used when nothing is configured
var DefaultMySQL = MySQLConfig{
	Host:     "127.0.0.1",
	Port:     "3306",
	User:     "root",
	Password: "",
	Database: "cpt",
}
