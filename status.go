package spinor

import "fmt"

// Status is the closed error-code taxonomy every public entry point
// returns (spec.md §6). It implements the error interface directly so
// callers can use normal Go error handling (errors.Is against the
// sentinel values below) without a separate error-code/error pair.
type Status int

const (
	StatusOk Status = iota
	StatusInvalidParameter
	StatusUnsupported
	StatusFail
	StatusNoMem
	StatusTimeout
	StatusAlreadyExist
	StatusNotExist
	StatusDeviceIoError
	StatusDeviceNotFound
	StatusDeviceMissingConfig
	StatusFlashNotProbed
	StatusFlashAddressOutOfRange
	StatusFlashPartNotSpecified
	StatusFlashPartNotRecognised
	StatusFlashPartMismatch
	StatusLockFail
	StatusJsonTypeInvalid
	StatusJsonDataInvalid
	StatusFileNotExist
	StatusFileReadFailure
)

var statusNames = [...]string{
	"ok",
	"invalid parameter",
	"unsupported",
	"fail",
	"out of memory",
	"timeout",
	"already exists",
	"does not exist",
	"device I/O error",
	"device not found",
	"device missing configuration",
	"flash not probed",
	"address out of range",
	"flash part not specified",
	"flash part not recognised",
	"flash part mismatch",
	"lock failed",
	"JSON type invalid",
	"JSON data invalid",
	"file does not exist",
	"file read failure",
}

func (s Status) String() string {
	if int(s) < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// Error implements the error interface; StatusOk never flows as an error
// value (callers check err == nil, not a Status comparison).
func (s Status) Error() string { return s.String() }

// wrappedStatus pairs a Status with op-specific context, printed alongside
// the status string but still comparable via errors.Is(err, StatusX).
type wrappedStatus struct {
	status Status
	msg    string
}

func (w *wrappedStatus) Error() string { return w.msg + ": " + w.status.String() }
func (w *wrappedStatus) Unwrap() error { return w.status }
func (w *wrappedStatus) Is(target error) bool {
	s, ok := target.(Status)
	return ok && s == w.status
}

func wrapStatus(s Status, format string, args ...interface{}) error {
	return &wrappedStatus{status: s, msg: fmt.Sprintf(format, args...)}
}
