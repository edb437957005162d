package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/upsrj/checkin-system/internal/core/domain"
)

const defaultHTTPTimeout = 10 * time.Second

// LedgerClient talks to the check-in server over HTTP. Writes are never
// retried here — the user re-triggers manually — so the at-most-once-per-day
// property rests entirely on the server's constraint.
type LedgerClient struct {
	baseURL string
	http    *http.Client
}

// NewLedgerClient creates a client for the server at baseURL.
func NewLedgerClient(baseURL string, timeout time.Duration) *LedgerClient {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &LedgerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type recordRequest struct {
	User     string `json:"user"`
	DateTime string `json:"dateTime"`
}

type serverError struct {
	Error string `json:"error"`
}

// CheckInRecord is one history entry as the server reports it.
type CheckInRecord struct {
	DateTime string `json:"dateTime"`
	User     string `json:"user"`
}

// Record submits a check-in. A 400 dedup rejection maps to
// domain.ErrAlreadyCheckedInToday; other failures are returned verbatim.
func (c *LedgerClient) Record(ctx context.Context, user, clientTime string) error {
	body, err := json.Marshal(recordRequest{User: user, DateTime: clientTime})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkin", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("check-in request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		return nil
	}

	var se serverError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &se)

	if resp.StatusCode == http.StatusBadRequest && strings.Contains(se.Error, "already checked in today") {
		return domain.ErrAlreadyCheckedInToday
	}
	if se.Error != "" {
		return fmt.Errorf("server rejected check-in (%d): %s", resp.StatusCode, se.Error)
	}
	return fmt.Errorf("server rejected check-in (%d)", resp.StatusCode)
}

// History returns the user's check-ins ascending by recorded time.
func (c *LedgerClient) History(ctx context.Context, user string) ([]CheckInRecord, error) {
	u := c.baseURL + "/checkin?user=" + url.QueryEscape(user)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history request failed (%d)", resp.StatusCode)
	}

	var records []CheckInRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return records, nil
}

// LastCheckIn returns the user's most recent check-in time, or nil when the
// user has never checked in.
func (c *LedgerClient) LastCheckIn(ctx context.Context, user string) (*time.Time, error) {
	records, err := c.History(ctx, user)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	last := records[len(records)-1]
	t, err := time.Parse(time.RFC3339, last.DateTime)
	if err != nil {
		return nil, fmt.Errorf("parse last check-in time %q: %w", last.DateTime, err)
	}
	return &t, nil
}
