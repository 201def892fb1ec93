package build

import "errors"

// Sentinel errors wrapped into classified errors at the service boundary.
var (
	ErrLoad      = errors.New("blogbuild: load error")
	ErrAggregate = errors.New("blogbuild: aggregate page error")
	ErrCacheSave = errors.New("blogbuild: cache save error")
)
