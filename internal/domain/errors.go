package domain

import "errors"

var (
	// ErrLoadFailure means the test data is missing and could not be fetched
	ErrLoadFailure = errors.New("test cases could not be loaded")
	// ErrSpawnFailure means the executable could not be launched
	ErrSpawnFailure = errors.New("executable could not be launched")
	// ErrOverflow means a case produced more output than the configured limit
	ErrOverflow = errors.New("output limit exceeded")
)

// OverflowMessage is the abort reason shown when a case floods stdout
const OverflowMessage = "Your program produced more output than can be displayed. It is probably stuck in an infinite loop. All test cases failed."
