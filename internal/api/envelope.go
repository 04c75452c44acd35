package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Envelope is the backend's response wrapper.
type Envelope struct {
	IsSuccess *bool           `json:"isSuccess"`
	Code      Code            `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
}

// ParseResponse unwraps the envelope. A 204 or a non-JSON body yields nil
// data. isSuccess == false or a non-2xx status yields an *Error carrying
// the envelope message.
func ParseResponse(resp *http.Response) (json.RawMessage, error) {
	if resp.StatusCode == http.StatusNoContent || !isJSON(resp.Header) {
		return nil, nil
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if errors.Is(err, io.EOF) && isOK(resp.StatusCode) {
			return nil, nil
		}
		if !isOK(resp.StatusCode) {
			return nil, &Error{Status: resp.StatusCode, Message: defaultErrorMessage}
		}
		return nil, fmt.Errorf("decoding response envelope: %w", err)
	}

	if !isOK(resp.StatusCode) || (env.IsSuccess != nil && !*env.IsSuccess) {
		msg := env.Message
		if msg == "" {
			msg = defaultErrorMessage
		}
		return nil, &Error{Status: resp.StatusCode, Code: string(env.Code), Message: msg}
	}
	return env.Data, nil
}

// decodeInto parses resp and unmarshals the data into dst. Non-2xx
// responses without a JSON body are reported as errors here even though
// ParseResponse maps them to nil.
func decodeInto(resp *http.Response, dst any) error {
	if !isOK(resp.StatusCode) && !isJSON(resp.Header) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		msg := strings.TrimSpace(string(body))
		if msg == "" || strings.HasPrefix(msg, "<") {
			msg = fmt.Sprintf("%s (HTTP %d)", defaultErrorMessage, resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	data, err := ParseResponse(resp)
	if err != nil {
		return err
	}
	if dst == nil || len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}

func isOK(status int) bool {
	return status >= 200 && status < 300
}

func isJSON(h http.Header) bool {
	return strings.Contains(h.Get("Content-Type"), "application/json")
}
