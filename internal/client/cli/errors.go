package cli

import "errors"

// reportedError ошибка, о которой пользователь уже уведомлен
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// IsReported сообщает, было ли уже показано уведомление об ошибке.
// Такие ошибки не нужно печатать повторно.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}
