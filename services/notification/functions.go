package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var ErrFunctionsDisabled = errors.New("email functions are not configured")

// FunctionsClient calls hosted functions at {baseURL}/functions/v1/{name}.
type FunctionsClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewFunctionsClient(baseURL, token string) *FunctionsClient {
	return &FunctionsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Invoke posts payload as JSON and returns the function's emailStatus.
func (c *FunctionsClient) Invoke(ctx context.Context, name string, payload any) (string, error) {
	if c == nil || c.baseURL == "" {
		return "", ErrFunctionsDisabled
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s payload: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/functions/v1/"+name, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call %s: %w", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read %s response: %w", name, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := gjson.GetBytes(raw, "error").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("%s returned %d: %s", name, resp.StatusCode, msg)
	}

	status := gjson.GetBytes(raw, "emailStatus").String()
	if strings.EqualFold(status, "failed") || strings.EqualFold(status, "error") {
		return status, fmt.Errorf("%s reported email status %q", name, status)
	}
	return status, nil
}
