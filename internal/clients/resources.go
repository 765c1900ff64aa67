package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/andreasstove999/resource-panel/internal/resource"
)

const maxResponseBytes = 4 << 20

// ResourceClient speaks the resource API's JSON contract.
type ResourceClient struct {
	c        *Client
	maxBytes int64
}

func NewResourceClient(c *Client) *ResourceClient {
	return &ResourceClient{c: c, maxBytes: maxResponseBytes}
}

type LoginResult struct {
	Message string `json:"message"`
}

type adjustRequest struct {
	Change int `json:"change"`
}

// envelope picks out the error field every endpoint may return. An empty
// error string counts as no error.
type envelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (rc *ResourceClient) Login(ctx context.Context, creds resource.Credentials) (LoginResult, error) {
	const op = "login"
	body, status, err := rc.send(ctx, op, http.MethodPost, "/api/login", creds)
	if err != nil {
		return LoginResult{}, err
	}
	env, err := decodeEnvelope(op, status, body)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Message: env.Message}, nil
}

func (rc *ResourceClient) ListResources(ctx context.Context) (resource.Snapshot, error) {
	const op = "list resources"
	body, status, err := rc.send(ctx, op, http.MethodGet, "/api/resources", nil)
	if err != nil {
		return resource.Snapshot{}, err
	}
	if status < 200 || status > 299 {
		return resource.Snapshot{}, &TransportError{Op: op, StatusCode: status}
	}
	items, err := decodeResources(body)
	if err != nil {
		return resource.Snapshot{}, &DecodeError{Op: op, Err: err}
	}
	return resource.NewSnapshot(items), nil
}

func (rc *ResourceClient) CreateResource(ctx context.Context, in resource.NewResource) error {
	const op = "create resource"
	body, status, err := rc.send(ctx, op, http.MethodPost, "/api/resources", in)
	if err != nil {
		return err
	}
	_, err = decodeEnvelope(op, status, body)
	return err
}

func (rc *ResourceClient) AdjustQuantity(ctx context.Context, name string, change int) error {
	const op = "adjust quantity"
	if name == "" {
		return fmt.Errorf("%s: empty resource name", op)
	}
	path := "/api/resources/" + escapeSegment(name) + "/quantity"
	body, status, err := rc.send(ctx, op, http.MethodPut, path, adjustRequest{Change: change})
	if err != nil {
		return err
	}
	_, err = decodeEnvelope(op, status, body)
	return err
}

// send issues a single request. There is no retry: each user action maps to
// exactly one call.
func (rc *ResourceClient) send(ctx context.Context, op, method, path string, payload any) ([]byte, int, error) {
	var reqBody io.Reader
	headers := http.Header{"Accept": []string{"application/json"}}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
		headers.Set("Content-Type", "application/json")
	}

	resp, err := rc.c.Do(ctx, method, path, "", reqBody, headers)
	if err != nil {
		return nil, 0, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	// One byte past the limit tells a full body from a cut one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, rc.maxBytes+1))
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > rc.maxBytes {
		return nil, resp.StatusCode, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("response exceeds %d bytes", rc.maxBytes)}
	}
	return body, resp.StatusCode, nil
}

// escapeSegment escapes name as a single path segment. A name made only of
// dots is percent-encoded so URL resolution does not treat it as "." or "..".
func escapeSegment(name string) string {
	if strings.Trim(name, ".") == "" {
		return strings.ReplaceAll(name, ".", "%2E")
	}
	return url.PathEscape(name)
}

// decodeEnvelope classifies a mutation or login response. An error field wins
// over the status code; a non-2xx status without one is a transport failure.
// A 2xx body must be a JSON object.
func decodeEnvelope(op string, status int, body []byte) (envelope, error) {
	var env envelope
	decodeErr := errNotObject
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
		decodeErr = json.Unmarshal(trimmed, &env)
	}
	if decodeErr == nil && env.Error != "" {
		return envelope{}, &APIError{Op: op, StatusCode: status, Message: env.Error}
	}
	if status < 200 || status > 299 {
		return envelope{}, &TransportError{Op: op, StatusCode: status}
	}
	if decodeErr != nil {
		return envelope{}, &DecodeError{Op: op, Err: decodeErr}
	}
	return env, nil
}

var errNotObject = errors.New("expected a JSON object")

type wireResource struct {
	Name              *string `json:"name"`
	MaxUnits          *int    `json:"max_units"`
	AvailableQuantity *int    `json:"available_quantity"`
}

func decodeResources(body []byte) ([]resource.Resource, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("expected a JSON array")
	}

	var wire []wireResource
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil, err
	}

	out := make([]resource.Resource, 0, len(wire))
	for i, w := range wire {
		switch {
		case w.Name == nil:
			return nil, fmt.Errorf("element %d: missing name", i)
		case w.MaxUnits == nil:
			return nil, fmt.Errorf("element %d: missing max_units", i)
		case w.AvailableQuantity == nil:
			return nil, fmt.Errorf("element %d: missing available_quantity", i)
		}
		out = append(out, resource.Resource{
			Name:              *w.Name,
			MaxUnits:          *w.MaxUnits,
			AvailableQuantity: *w.AvailableQuantity,
		})
	}
	return out, nil
}
