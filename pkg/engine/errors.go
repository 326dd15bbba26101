package engine

import "errors"

// Closed sentinel error taxonomy for the engine facade. Every error an
// Engine method returns wraps one of these via fmt.Errorf("%w: ..."), so
// callers can dispatch with errors.Is. The exception is Dump and Restore:
// a failure of the snapshot store or a corrupt blob is returned wrapping
// that underlying error (for example snapshot.ErrNotFound), not one of these.
var (
    ErrInvalidID        = errors.New("engine: invalid id")
    ErrUnknownID        = errors.New("engine: unknown id")
    ErrInvalidArgument  = errors.New("engine: invalid argument")
    ErrMalformedTemplate = errors.New("engine: malformed template")
    ErrVariableLimit    = errors.New("engine: variable limit exceeded")
    ErrBufferTooSmall   = errors.New("engine: buffer too small")
    ErrUnknownShape     = errors.New("engine: unknown shape")
    ErrOutOfMemory      = errors.New("engine: out of memory")
)
