package render

import (
	"errors"

	"github.com/goliatone/go-views/pkg/collection"
	"github.com/goliatone/go-views/pkg/engine"
	"github.com/goliatone/go-views/pkg/helpers"
)

// Sentinel errors for the render pipeline. Errors raised in other packages
// are re-exported here so callers can match the whole taxonomy with
// errors.Is against a single package.
var (
	// ErrValidation reports a malformed template record. Fatal for the
	// offending call only.
	ErrValidation = errors.New("invalid template record")

	// ErrMissingTemplate reports a template lookup miss. Fatal in strict
	// mode, otherwise logged with an empty result.
	ErrMissingTemplate = errors.New("template not found")

	// ErrLayoutCycle reports a layout chain that revisits a layout. Always
	// fatal.
	ErrLayoutCycle = errors.New("layout cycle detected")

	// ErrEngineRender wraps failures reported by an engine adapter. Always
	// propagated, never swallowed.
	ErrEngineRender = errors.New("engine render failed")

	// ErrMissingCollection re-exports the collection lookup failure.
	ErrMissingCollection = collection.ErrMissingCollection

	// ErrMissingEngine re-exports the engine registry miss. Always fatal.
	ErrMissingEngine = engine.ErrNotFound

	// ErrEngineCapability re-exports the capability mismatch. Always fatal.
	ErrEngineCapability = engine.ErrCapability

	// ErrHelperNotFound re-exports the helper lookup miss. Recoverable
	// outside strict mode.
	ErrHelperNotFound = helpers.ErrNotFound
)
