package capture

// OutcomeKind tags the result of a single capture attempt.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeTimeout
	OutcomeAccessLost
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeAccessLost:
		return "accesslost"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is what one call to Handle.Capture produced. Frame is set only for
// OutcomeSuccess and Message only for OutcomeError.
type Outcome struct {
	Kind    OutcomeKind
	Frame   Frame
	Message string
}

// Success wraps a captured frame.
func Success(f Frame) Outcome { return Outcome{Kind: OutcomeSuccess, Frame: f} }

// Timeout reports that no new frame arrived within the platform wait.
func Timeout() Outcome { return Outcome{Kind: OutcomeTimeout} }

// AccessLost reports that the OS invalidated the duplication session.
func AccessLost() Outcome { return Outcome{Kind: OutcomeAccessLost} }

// Failure reports an unrecoverable platform fault.
func Failure(msg string) Outcome { return Outcome{Kind: OutcomeError, Message: msg} }
