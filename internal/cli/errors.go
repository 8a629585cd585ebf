package cli

import "fmt"

// ExitError — ошибка команды с конкретным exit-кодом процесса.
// main транслирует её в os.Exit(Code).
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitWith создаёт ExitError без сообщения: команда уже напечатала
// всё нужное, остался только код.
func exitWith(code int) *ExitError {
	return &ExitError{Code: code}
}
