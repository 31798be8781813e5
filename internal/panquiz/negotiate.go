// Package panquiz is the HTTP client for the Panquiz play service: the
// two-step SignalR negotiation and the PIN validation endpoint.
package panquiz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://play.panquiz.com"

// SessionDescriptor is the product of one successful negotiation. It is
// consumed exactly once to open a socket.
type SessionDescriptor struct {
	SocketURL       string
	AccessToken     string
	ConnectionToken string
	ConnectionID    string
}

// Client talks to the Panquiz play service. The zero value is not usable;
// construct with New.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Negotiate performs the two-step handshake and composes the final socket URL.
// No state is retained between attempts.
func (c *Client) Negotiate(ctx context.Context) (*SessionDescriptor, error) {
	first, err := c.postJSON(ctx, c.baseURL+"/api/v1/playHub/negotiate?negotiateVersion=1", "")
	if err != nil {
		return nil, &TransportError{Step: "negotiate", Err: err}
	}
	var step1 struct {
		AccessToken string `json:"accessToken"`
		URL         string `json:"url"`
	}
	if err := json.Unmarshal(first, &step1); err != nil {
		return nil, &TransportError{Step: "negotiate", Err: err}
	}
	if step1.AccessToken == "" || step1.URL == "" {
		return nil, ErrNoAccessToken
	}

	socketURL, err := url.Parse(step1.URL)
	if err != nil {
		return nil, &TransportError{Step: "negotiate", Err: err}
	}
	requestID := socketURL.Query().Get("asrs_request_id")
	origin := socketURL.Scheme + "://" + socketURL.Host
	if socketURL.Scheme == "wss" {
		origin = "https://" + socketURL.Host
	} else if socketURL.Scheme == "ws" {
		origin = "http://" + socketURL.Host
	}

	secondURL := fmt.Sprintf(
		"%s/client/negotiate?hub=playhub&asrs.op=%%2Fv1%%2FplayHub&negotiateVersion=1&asrs_request_id=%s",
		origin, url.QueryEscape(requestID),
	)
	second, err := c.postJSON(ctx, secondURL, step1.AccessToken)
	if err != nil {
		return nil, &TransportError{Step: "client negotiate", Err: err}
	}
	var step2 struct {
		ConnectionToken string `json:"connectionToken"`
		ConnectionID    string `json:"connectionId"`
	}
	if err := json.Unmarshal(second, &step2); err != nil {
		return nil, &TransportError{Step: "client negotiate", Err: err}
	}
	if step2.ConnectionToken == "" || step2.ConnectionID == "" {
		return nil, ErrNoConnectionToken
	}

	final := step1.URL + "&id=" + step2.ConnectionToken + "&access_token=" + url.QueryEscape(step1.AccessToken)
	return &SessionDescriptor{
		SocketURL:       final,
		AccessToken:     step1.AccessToken,
		ConnectionToken: step2.ConnectionToken,
		ConnectionID:    step2.ConnectionID,
	}, nil
}

func (c *Client) postJSON(ctx context.Context, rawURL, bearer string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, nil)
	if err != nil {
		return nil, err
	}
	setBrowserHeaders(req, c.baseURL)
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	req.Header.Set("x-signalr-user-agent", "Microsoft SignalR/6.0 (6.0.7; Unknown OS; Browser; Unknown Runtime Version)")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

func setBrowserHeaders(req *http.Request, origin string) {
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Origin", origin)
	req.Header.Set("Referer", origin+"/")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
}
