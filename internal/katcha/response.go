package katcha

import (
	"encoding/json"
	"fmt"
)

const maxRawPreview = 256

// Response is one backend answer. Data is nil when the body was not valid
// JSON; Raw always keeps the original text.
type Response struct {
	Status int
	Data   json.RawMessage
	Raw    string
}

func newResponse(status int, body []byte) *Response {
	r := &Response{Status: status, Raw: string(body)}
	if json.Valid(body) {
		r.Data = json.RawMessage(body)
	}
	return r
}

// OK reports whether the status is in the 2xx range
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Decode unmarshals the JSON body into v
func (r *Response) Decode(v interface{}) error {
	if r.Data == nil {
		return fmt.Errorf("katcha: response body is not JSON: %q", preview(r.Raw))
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ErrorMessage extracts the backend "error" field when present, falling
// back to the raw body
func (r *Response) ErrorMessage() string {
	if r.Data != nil {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(r.Data, &e) == nil && e.Error != "" {
			return e.Error
		}
	}
	return preview(r.Raw)
}

// Err returns an *HTTPError for non-2xx responses, nil otherwise
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return &HTTPError{Status: r.Status, Body: r.ErrorMessage()}
}

func preview(s string) string {
	if len(s) > maxRawPreview {
		return s[:maxRawPreview] + "..."
	}
	return s
}
