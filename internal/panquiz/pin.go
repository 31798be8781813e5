package panquiz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// PinValidation is the service's answer to a PIN probe. ErrorCode 0 with a
// non-empty PlayID means the PIN is joinable; ErrorCode 1 means unknown PIN.
type PinValidation struct {
	PlayID    string `json:"playId"`
	ErrorCode int    `json:"errorCode"`

	Raw json.RawMessage `json:"-"`
}

// Joinable reports whether the remote accepted the PIN.
func (v *PinValidation) Joinable() bool {
	return v != nil && v.ErrorCode == 0 && v.PlayID != ""
}

// ValidatePin asks the play service whether pin identifies a live game.
func (c *Client) ValidatePin(ctx context.Context, pin string) (*PinValidation, error) {
	form := url.Values{"pinCode": {strings.TrimSpace(pin)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/player/pin", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{Step: "validate pin", Err: err}
	}
	setBrowserHeaders(req, c.baseURL)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Step: "validate pin", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Step: "validate pin", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &TransportError{Step: "validate pin", Err: err}
	}
	var v PinValidation
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, &TransportError{Step: "validate pin", Err: err}
	}
	v.Raw = json.RawMessage(body)
	return &v, nil
}
