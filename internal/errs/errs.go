// Package errs defines the engine's stable error taxonomy.
//
// Errors are distinguished by kind, never by string matching — wrap a
// sentinel with fmt.Errorf("...: %w", ErrX) and callers use errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInputInvalid covers empty content, empty query, empty chunk sets,
	// and boundary-validation failures on option structs.
	ErrInputInvalid = errors.New("input invalid")

	// ErrNotConfigured means a required capability (embedder) is missing.
	ErrNotConfigured = errors.New("not configured")

	// ErrStorageError is wrapped by engine.New when Storage cannot be opened
	// or the query cache cannot be created. Errors from individual Storage
	// operations carry a "storage error:" message prefix but do not wrap
	// this sentinel, so errors.Is does not match them; a failed write
	// transaction is rolled back before its error is returned.
	ErrStorageError = errors.New("storage error")

	// ErrNotFound is not returned by any engine operation: open returns
	// (nil, nil) for an unknown id and forget of an unknown id is a no-op
	// success.
	ErrNotFound = errors.New("not found")

	// ErrEmptyMemoryChunks is returned by remember when chunking + dedup
	// produced neither a new row nor a merge. It wraps ErrInputInvalid.
	ErrEmptyMemoryChunks = fmt.Errorf("empty memory chunks: %w", ErrInputInvalid)
)

// Is reports whether err wraps target, per errors.Is semantics. Exported for
// callers that prefer errs.Is(err, errs.ErrNotFound) over importing "errors".
func Is(err, target error) bool { return errors.Is(err, target) }
