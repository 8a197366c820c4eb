package helpdesk

import "fmt"

// UpstreamError reports a non-2xx response from the upstream API.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	body := e.Body
	if r := []rune(body); len(r) > 200 {
		body = string(r[:200])
	}
	return fmt.Sprintf("upstream returned %d: %s", e.Status, body)
}

// TransportError reports an I/O failure talking to the upstream.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream transport: %v", e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// DecodeError reports a malformed upstream payload.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("upstream payload: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }
