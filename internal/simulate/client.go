package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/troxeldj/greek-god-arena/internal/domain/roster"
	"github.com/troxeldj/greek-god-arena/internal/domain/types"
)

// ErrUnexpectedStatus is returned when the server answers with a status
// the call does not expect.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client is a thin JSON client for the arena API.
type Client struct {
	http *http.Client
	base string
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
		base: strings.TrimRight(baseURL, "/"),
	}
}

// Health checks that the server answers GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil)
}

// Roster fetches the contestants.
func (c *Client) Roster(ctx context.Context) ([]roster.Contestant, error) {
	var out []roster.Contestant
	err := c.do(ctx, http.MethodGet, "/roster", nil, http.StatusOK, &out)
	return out, err
}

// CreateSession opens a new session.
func (c *Client) CreateSession(ctx context.Context) (types.SessionView, error) {
	var v types.SessionView
	err := c.do(ctx, http.MethodPost, "/sessions", nil, http.StatusCreated, &v)
	return v, err
}

// Session fetches the current view of a session.
func (c *Client) Session(ctx context.Context, id string) (types.SessionView, error) {
	var v types.SessionView
	err := c.do(ctx, http.MethodGet, "/sessions/"+id, nil, http.StatusOK, &v)
	return v, err
}

// DeleteSession ends a session.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+id, nil, http.StatusNoContent, nil)
}

// Select picks a contestant for the session.
func (c *Client) Select(ctx context.Context, id, contestantID, actionID string) (types.SessionView, error) {
	var v types.SessionView
	body := map[string]string{"contestant_id": contestantID, "action_id": actionID}
	err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/select", body, http.StatusOK, &v)
	return v, err
}

// PlayRound plays one round of the session's match.
func (c *Client) PlayRound(ctx context.Context, id, actionID string) (types.SessionView, error) {
	var v types.SessionView
	err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/rounds", map[string]string{"action_id": actionID}, http.StatusOK, &v)
	return v, err
}

// Reset clears the session's selection and match.
func (c *Client) Reset(ctx context.Context, id, actionID string) (types.SessionView, error) {
	var v types.SessionView
	err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/reset", map[string]string{"action_id": actionID}, http.StatusOK, &v)
	return v, err
}

// Standings fetches the top limit standings rows.
func (c *Client) Standings(ctx context.Context, limit int) ([]types.Entry, error) {
	var out []types.Entry
	err := c.do(ctx, http.MethodGet, "/standings?limit="+strconv.Itoa(limit), nil, http.StatusOK, &out)
	return out, err
}

// Rank fetches one contestant's standings row.
func (c *Client) Rank(ctx context.Context, contestantID string) (types.Entry, error) {
	var e types.Entry
	err := c.do(ctx, http.MethodGet, "/standings/"+contestantID, nil, http.StatusOK, &e)
	return e, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%w: %s %s: %d %s", ErrUnexpectedStatus, method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
