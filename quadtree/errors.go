package quadtree

import "errors"

// ErrDuplicateInsert is returned by Add/AddRange/AddBulk when an item
// with the same key is already present.
var ErrDuplicateInsert = errors.New("quadtree: item already present")

// ErrBulkPreconditionViolated is returned by AddBulk when the root
// already has children — bulk loading only ever builds onto a leaf.
var ErrBulkPreconditionViolated = errors.New("quadtree: addBulk requires a childless root")
