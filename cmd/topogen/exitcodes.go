package main

import (
	"errors"

	"github.com/netsim/topogen/internal/cluster"
	"github.com/netsim/topogen/internal/config"
	"github.com/netsim/topogen/internal/delaunay"
	"github.com/netsim/topogen/internal/export"
	"github.com/netsim/topogen/internal/fetch"
	"github.com/netsim/topogen/internal/filter"
	"github.com/netsim/topogen/internal/groundtruth"
	"github.com/netsim/topogen/internal/importer"
	"github.com/netsim/topogen/internal/location"
	"github.com/netsim/topogen/internal/population"
	"github.com/netsim/topogen/internal/storage"
)

// Exit codes
const (
	ExitSuccess       = 0 // Success
	ExitError         = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError   = 2 // Configuration error (missing config, invalid parameters)
	ExitDataError     = 3 // Data error (malformed or missing input data)
	ExitGeometryError = 4 // No triangulation exists for the input
	ExitIOError       = 5 // Output destination not writable, download failure
)

var exitClasses = []struct {
	code int
	errs []error
}{
	{ExitConfigError, []error{
		config.ErrInvalid,
		config.ErrConfigNotFound,
		cluster.ErrInvalidParams,
		filter.ErrInvalidBeta,
		filter.ErrInvalidRule,
	}},
	{ExitGeometryError, []error{delaunay.ErrDegenerate}},
	{ExitDataError, []error{
		importer.ErrMalformed,
		groundtruth.ErrMalformed,
		population.ErrMalformed,
		location.ErrInvalidCoordinate,
		storage.ErrNoDatabase,
		fetch.ErrInvalidResponse,
	}},
	{ExitIOError, []error{
		export.ErrUnwritable,
		fetch.ErrNetwork,
		fetch.ErrUnavailable,
	}},
}

// exitCode maps an error returned by a command to its process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	for _, class := range exitClasses {
		for _, target := range class.errs {
			if errors.Is(err, target) {
				return class.code
			}
		}
	}
	var status *fetch.StatusError
	if errors.As(err, &status) {
		return ExitIOError
	}
	return ExitError
}
