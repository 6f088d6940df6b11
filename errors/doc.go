/*
Package errors provides semantic error types for the entitymeta library.

Every error type matches a sentinel through errors.Is, so callers can branch
on the kind of failure without type assertions:

	var (
	    ErrNotFound     = errors.New("not found")
	    ErrConflict     = errors.New("descriptor conflict")
	    ErrMissingType  = errors.New("backing type missing")
	    ErrUnresolvable = errors.New("type not resolvable")
	    ErrLoad         = errors.New("metadata load failed")
	)

Batch loads report one LoadError carrying every collected cause:

	files, err := reg.LoadFiles(ctx, paths)
	if errors.IsLoadError(err) {
	    for _, cause := range errors.Causes(err) {
	        log.Println(cause)
	    }
	}

LoadError implements Unwrap() []error, so errors.Is(err, ErrMissingType)
is true when any collected cause is a missing-type failure.
*/
package errors
