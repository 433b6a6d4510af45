package importer

import "errors"

// Sentinel kinds for import errors.
var (
	ErrNoBestsTable = errors.New("no personal bests table")
	ErrBadCSV       = errors.New("malformed csv")
	ErrBadYAML      = errors.New("malformed yaml")
)
