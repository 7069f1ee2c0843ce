package capture

// DefaultRetryCount is the retry budget used when callers have no preference.
const DefaultRetryCount = 5

// Action is what the retry loop does next with an outcome.
type Action int

const (
	ActionAccept Action = iota
	ActionRetry
	ActionReinitialize
	ActionFail
)

func (a Action) String() string {
	switch a {
	case ActionAccept:
		return "accept"
	case ActionRetry:
		return "retry"
	case ActionReinitialize:
		return "reinitialize"
	case ActionFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Decision is the classifier's verdict for one outcome. Err is set only for
// ActionFail.
type Decision struct {
	Action Action
	Err    error
}

// Classify decides how to handle an outcome given the remaining retry budget.
// Platform errors are never retried; timeouts, lost access and blank frames
// are retried while budget remains. With no budget left a blank frame is
// accepted as-is.
func Classify(o Outcome, remaining int) Decision {
	switch o.Kind {
	case OutcomeError:
		return Decision{Action: ActionFail, Err: &CaptureError{Message: o.Message}}
	case OutcomeTimeout:
		if remaining > 0 {
			return Decision{Action: ActionRetry}
		}
		return Decision{Action: ActionFail, Err: ErrTimeout}
	case OutcomeAccessLost:
		if remaining > 0 {
			return Decision{Action: ActionReinitialize}
		}
		return Decision{Action: ActionFail, Err: ErrAccessLost}
	case OutcomeSuccess:
		if remaining > 0 && looksBlank(o.Frame) {
			return Decision{Action: ActionRetry}
		}
		return Decision{Action: ActionAccept}
	default:
		return Decision{Action: ActionFail, Err: &CaptureError{Message: "capture: unknown outcome " + o.Kind.String()}}
	}
}
