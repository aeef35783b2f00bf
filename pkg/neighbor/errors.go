package neighbor

import "errors"

// ErrSelfLoop is returned when a node is inserted as its own neighbor.
// It is an assertion-level error: it indicates a bug in the caller (the
// HNSW builder), not a transient condition.
var ErrSelfLoop = errors.New("neighbor: node cannot be its own neighbor")

// ErrOrderViolation is returned by AddInOrder when the appended score
// would break the array's configured ordering. Like ErrSelfLoop, this is
// assertion-level and indicates a builder bug rather than something to
// retry.
var ErrOrderViolation = errors.New("neighbor: score violates array order")
