package apperror

const (
	ExitConfig = 1
	ExitUsage  = 2
)

// Error is a failure that should end the process with a specific exit code.
// Details, when present, are printed one per line instead of Message.
type Error struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	Code    int      `json:"code"`
}

func (e Error) Error() string {
	return e.Message
}

func (e Error) ExitCode() int {
	return e.Code
}

func (e Error) Lines() []string {
	if len(e.Details) == 0 {
		return []string{e.Message}
	}
	return e.Details
}

func New(msg string, code int) Error {
	return Error{
		Message: msg,
		Code:    code,
	}
}

func (e Error) WithDetails(details ...string) Error {
	e.Details = append(append([]string(nil), e.Details...), details...)
	return e
}
