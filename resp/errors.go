package resp

import "fmt"

// ProtocolError is a terminal protocol violation. Its Error text is part
// of the wire contract: callers may match on it and may echo it to the
// peer, so the messages are never reworded.
type ProtocolError struct {
	msg string
}

func (e *ProtocolError) Error() string {
	return e.msg
}

var (
	errInvalidMultiBulkLength = &ProtocolError{msg: "Protocol error: invalid multibulk length"}
	errInvalidBulkLength      = &ProtocolError{msg: "Protocol error: invalid bulk length"}
	errUnbalancedQuotes       = &ProtocolError{msg: "Protocol error: unbalanced quotes in request"}
)

func errExpectedDollar(got byte) error {
	return &ProtocolError{msg: fmt.Sprintf("Protocol error: expected '$', got '%c'", got)}
}
