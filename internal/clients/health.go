package clients

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

type HealthTarget struct {
	Name   string
	Client *Client
	Path   string
}

type HealthResult struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
}

func CheckHealth(ctx context.Context, target HealthTarget) HealthResult {
	// Short check timeout
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	resp, err := target.Client.Do(ctx, http.MethodGet, target.Path, "", nil, http.Header{})
	if err != nil {
		return HealthResult{Name: target.Name, OK: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	return HealthResult{Name: target.Name, OK: ok, StatusCode: resp.StatusCode}
}

// CheckAll checks every target concurrently. Results keep the target order.
func CheckAll(ctx context.Context, targets []HealthTarget) []HealthResult {
	results := make([]HealthResult, len(targets))

	var g errgroup.Group
	for i := range targets {
		g.Go(func() error {
			results[i] = CheckHealth(ctx, targets[i])
			return nil
		})
	}
	_ = g.Wait()

	return results
}
