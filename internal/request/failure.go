package request

import (
	"fmt"
	"net/http"
)

// GenericMessage is the only failure text ever shown to a user. Backend
// detail stays in the logs.
const GenericMessage = "An error occurred"

// FailureKind tags the ways an invocation can fail.
type FailureKind int

const (
	// FailureTransport covers everything before a status line is read:
	// dial, DNS, timeout, cancellation, or a cross-origin path.
	FailureTransport FailureKind = iota + 1
	// FailureStatus is a non-2xx response other than 401.
	FailureStatus
	// FailureDecode is a 2xx response whose body is not valid JSON for the target.
	FailureDecode
	// FailureUnauthenticated is a 401. It never reaches the outcome's error.
	FailureUnauthenticated
)

// String returns the kind name used in logs and the journal.
func (k FailureKind) String() string {
	switch k {
	case FailureTransport:
		return "transport"
	case FailureStatus:
		return "status"
	case FailureDecode:
		return "decode"
	case FailureUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Failure describes why an invocation did not succeed.
type Failure struct {
	Kind   FailureKind
	Status int
	Err    error
}

// Error returns the detailed description, meant for logs only.
func (f *Failure) Error() string {
	switch f.Kind {
	case FailureStatus, FailureUnauthenticated:
		return fmt.Sprintf("%s: HTTP %d %s", f.Kind, f.Status, http.StatusText(f.Status))
	default:
		if f.Err != nil {
			return fmt.Sprintf("%s: %v", f.Kind, f.Err)
		}
		return f.Kind.String()
	}
}

// Unwrap returns the underlying transport or decode error.
func (f *Failure) Unwrap() error { return f.Err }

// Message maps a failure to the text a view may render. Unauthenticated
// failures are handled by navigation and map to the empty string.
func Message(f *Failure) string {
	if f == nil {
		return ""
	}
	switch f.Kind {
	case FailureUnauthenticated:
		return ""
	case FailureTransport, FailureStatus, FailureDecode:
		return GenericMessage
	default:
		return GenericMessage
	}
}

func classifyStatus(status int) *Failure {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return &Failure{Kind: FailureUnauthenticated, Status: status}
	default:
		return &Failure{Kind: FailureStatus, Status: status}
	}
}
