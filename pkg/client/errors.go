package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrTransport marks failures that happened before a response arrived.
	ErrTransport = errors.New("client: transport failure")
	// ErrMalformedResponse marks 2xx responses missing the keys a call needs.
	ErrMalformedResponse = errors.New("client: malformed response")
)

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Status     string
	// Detail holds the backend's `detail` or `message` field, if any.
	Detail string
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: backend returned %s: %s", e.Status, e.Message())
}

// Message returns the text a user should see for the failure.
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Status != "" {
		return e.Status
	}
	return http.StatusText(e.StatusCode)
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	return &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Detail:     errorDetail(body),
		Body:       body,
	}
}

func errorDetail(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if detail := detailText(payload.Detail); detail != "" {
		return detail
	}
	return payload.Message
}

// validationIssue is one entry of a structured `detail` array:
// {"loc": ["body", "WERKS", "value"], "msg": "field required"}.
type validationIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// detailText accepts both string details and the structured validation
// details some backends return.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	if issues := parseIssues(raw); len(issues) > 0 {
		messages := make([]string, 0, len(issues))
		for _, issue := range issues {
			messages = append(messages, issue.Msg)
		}
		return strings.Join(messages, "; ")
	}
	return strings.TrimSpace(string(raw))
}

func parseIssues(raw json.RawMessage) []validationIssue {
	var issues []validationIssue
	if err := json.Unmarshal(raw, &issues); err != nil {
		return nil
	}
	out := issues[:0]
	for _, issue := range issues {
		if strings.TrimSpace(issue.Msg) != "" {
			out = append(out, issue)
		}
	}
	return out
}

// FieldErrors returns the structured validation details of the response
// keyed by dotted location ("body.WERKS.value"). It is nil when the detail
// is plain text.
func (e *APIError) FieldErrors() map[string][]string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(e.Body, &payload); err != nil {
		return nil
	}
	issues := parseIssues(payload.Detail)
	if len(issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(issues))
	for _, issue := range issues {
		segments := make([]string, 0, len(issue.Loc))
		for _, segment := range issue.Loc {
			segments = append(segments, fmt.Sprint(segment))
		}
		location := strings.Join(segments, ".")
		out[location] = append(out[location], issue.Msg)
	}
	return out
}

func malformed(call, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedResponse, call, reason)
}

type transportError struct {
	op  string
	err error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("client: %s: %v", e.op, e.err)
}

func (e *transportError) Unwrap() []error {
	return []error{ErrTransport, e.err}
}

// Message converts any client error into the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	if errors.Is(err, ErrMalformedResponse) {
		return "invalid data format"
	}
	var transport *transportError
	if errors.As(err, &transport) {
		return "backend unreachable: " + transport.err.Error()
	}
	return err.Error()
}
