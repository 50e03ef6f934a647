package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotFound is returned when no doctor with the requested id exists.
var ErrNotFound = errors.New("doctor not found")

// Directory supplies doctor records from the employee directory service.
type Directory interface {
	GetDoctor(ctx context.Context, id string) (*Doctor, error)
	ListBySpecialty(ctx context.Context, specialty string) ([]Doctor, error)
	ListAll(ctx context.Context) ([]Doctor, error)
}

// Client implements Directory against the remote employees HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds configuration for the directory client
type Config struct {
	BaseURL string // e.g. "http://localhost:3000"
	Timeout time.Duration
}

// NewClient creates a directory client with an explicit request timeout.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("directory: BaseURL is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// GetDoctor fetches a single doctor by id.
func (c *Client) GetDoctor(ctx context.Context, id string) (*Doctor, error) {
	doctors, err := c.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doctors {
		if doctors[i].ID == id {
			return &doctors[i], nil
		}
	}
	return nil, ErrNotFound
}

// ListBySpecialty returns doctors whose specialty matches, case-insensitively.
func (c *Client) ListBySpecialty(ctx context.Context, specialty string) ([]Doctor, error) {
	doctors, err := c.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var matched []Doctor
	for _, d := range doctors {
		if strings.EqualFold(d.Specialty, specialty) {
			matched = append(matched, d)
		}
	}
	return matched, nil
}

// ListAll returns every practitioner in the directory. Employee records
// without a specialty are filtered out.
func (c *Client) ListAll(ctx context.Context) ([]Doctor, error) {
	endpoint := c.baseURL + "/employees"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("directory: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("directory: API error (status %d): %s", resp.StatusCode, string(body))
	}

	var employees []Doctor
	if err := json.NewDecoder(resp.Body).Decode(&employees); err != nil {
		return nil, fmt.Errorf("directory: failed to decode response: %w", err)
	}

	var doctors []Doctor
	for _, e := range employees {
		if e.IsDoctor() {
			doctors = append(doctors, e)
		}
	}
	return doctors, nil
}
