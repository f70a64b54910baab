package main

import (
	"errors"

	"contextpilot/internal/errs"
)

// exitCodeFor maps an error returned from a subcommand to the exit code
// promised by the query surface contract: 0 success, 2 invalid
// arguments, 3 I/O failure, 4 history provider unavailable.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ioErr *errs.IOError
	if errors.As(err, &ioErr) {
		return ExitIOFailure
	}
	var shardErr *errs.ShardCorruptError
	if errors.As(err, &shardErr) {
		return ExitIOFailure
	}
	var histErr *errs.HistoryUnavailableError
	if errors.As(err, &histErr) {
		return ExitHistoryUnavailable
	}

	return ExitInvalidArguments
}
</content>
