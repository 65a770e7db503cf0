package common

import "errors"

type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

// Reported marks an operation failure that the invoker has already logged.
// Such failures are not printed again and do not change the exit status.
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

func IsReported(err error) bool {
	return errors.As(err, new(reportedError))
}
