package repository

import "errors"

// ErrReferentialConflict reports a delete blocked by dependent rows, e.g.
// removing an author who still has books. It is recoverable: the caller may
// retry after removing the dependents.
var ErrReferentialConflict = errors.New("repository: delete blocked by dependent records")
