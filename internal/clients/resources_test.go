package clients

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/resource-panel/internal/middleware"
	"github.com/andreasstove999/resource-panel/internal/resource"
)

type recordedRequest struct {
	Method  string
	Path    string
	RawPath string
	Header  http.Header
	Body    string
}

func newStubServer(t *testing.T, status int, body string) (*httptest.Server, <-chan recordedRequest) {
	t.Helper()
	ch := make(chan recordedRequest, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		ch <- recordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			RawPath: r.URL.EscapedPath(),
			Header:  r.Header.Clone(),
			Body:    string(b),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, ch
}

func newResourceClient(t *testing.T, baseURL string) *ResourceClient {
	t.Helper()
	base, err := NewClient("resource-api", baseURL, &http.Client{})
	require.NoError(t, err)
	return NewResourceClient(base)
}

func TestNewClientRejectsInvalidURL(t *testing.T) {
	_, err := NewClient("resource-api", "not a url", nil)
	require.Error(t, err)
	_, err = NewClient("resource-api", "://bad", nil)
	require.Error(t, err)
}

func TestLogin_Success(t *testing.T) {
	srv, reqs := newStubServer(t, http.StatusOK, `{"message":"Login successful"}`)
	rc := newResourceClient(t, srv.URL)

	res, err := rc.Login(context.Background(), resource.Credentials{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "Login successful", res.Message)

	req := <-reqs
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/login", req.Path)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"username":"alice","password":"pw"}`, req.Body)
}

func TestLogin_ErrorBodyIsAPIError(t *testing.T) {
	srv, _ := newStubServer(t, http.StatusUnauthorized, `{"error":"Invalid credentials"}`)
	rc := newResourceClient(t, srv.URL)

	_, err := rc.Login(context.Background(), resource.Credentials{Username: "alice", Password: "nope"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestLogin_ErrorFieldWithSuccessStatus(t *testing.T) {
	srv, _ := newStubServer(t, http.StatusOK, `{"error":"bad credentials"}`)
	rc := newResourceClient(t, srv.URL)

	_, err := rc.Login(context.Background(), resource.Credentials{Username: "a", Password: "b"})
	assert.True(t, IsAPIError(err))
}

func TestLogin_MalformedBody(t *testing.T) {
	srv, _ := newStubServer(t, http.StatusOK, `<html>oops</html>`)
	rc := newResourceClient(t, srv.URL)

	_, err := rc.Login(context.Background(), resource.Credentials{Username: "a", Password: "b"})
	assert.True(t, IsDecodeError(err), "got %v", err)
}

func TestLogin_NonObjectSuccessIsDecodeError(t *testing.T) {
	for _, body := range []string{`null`, `[]`, `"ok"`, `true`} {
		srv, _ := newStubServer(t, http.StatusOK, body)
		rc := newResourceClient(t, srv.URL)

		_, err := rc.Login(context.Background(), resource.Credentials{Username: "a", Password: "b"})
		assert.True(t, IsDecodeError(err), "body %q: got %v", body, err)
	}
}

func TestLogin_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rc := newResourceClient(t, url)
	_, err := rc.Login(context.Background(), resource.Credentials{Username: "a", Password: "b"})
	var te *TransportError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Zero(t, te.StatusCode)
}

func TestListResources_DecodesArray(t *testing.T) {
	srv, reqs := newStubServer(t, http.StatusOK, `[
		{"name":"Widget","max_units":10,"available_quantity":3},
		{"name":"Gadget","max_units":5,"available_quantity":5,"extra":"ignored"}
	]`)
	rc := newResourceClient(t, srv.URL)

	snap, err := rc.ListResources(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, snap.Len())
	assert.Equal(t, resource.Resource{Name: "Widget", MaxUnits: 10, AvailableQuantity: 3}, snap.At(0))
	assert.Equal(t, "Gadget", snap.At(1).Name)

	req := <-reqs
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/resources", req.Path)
}

func TestListResources_Empty(t *testing.T) {
	srv, _ := newStubServer(t, http.StatusOK, `[]`)
	rc := newResourceClient(t, srv.URL)

	snap, err := rc.ListResources(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Empty())
}

func TestListResources_NonArrayIsDecodeError(t *testing.T) {
	bodies := []string{
		`{"error":"nope"}`,
		`null`,
		``,
		`[{"name":"Widget","max_units":10}]`,
		`[{"max_units":10,"available_quantity":1}]`,
		`[{"name":"Widget","max_units":"ten","available_quantity":1}]`,
	}
	for _, body := range bodies {
		srv, _ := newStubServer(t, http.StatusOK, body)
		rc := newResourceClient(t, srv.URL)

		_, err := rc.ListResources(context.Background())
		assert.True(t, IsDecodeError(err), "body %q: got %v", body, err)
		assert.False(t, IsTransportError(err), "body %q", body)
	}
}

func TestListResources_OversizedBodyIsTransportError(t *testing.T) {
	item := `{"name":"Widget","max_units":10,"available_quantity":3}`
	body := "[" + strings.Repeat(item+",", 20) + item + "]"
	srv, _ := newStubServer(t, http.StatusOK, body)
	rc := newResourceClient(t, srv.URL)
	rc.maxBytes = int64(len(body) - 1)

	_, err := rc.ListResources(context.Background())
	var te *TransportError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.False(t, IsDecodeError(err))
	assert.Equal(t, http.StatusOK, te.StatusCode)
	assert.Contains(t, err.Error(), "exceeds")

	rc.maxBytes = int64(len(body))
	snap, err := rc.ListResources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 21, snap.Len())
}

func TestListResources_Non2xxIsTransportError(t *testing.T) {
	srv, _ := newStubServer(t, http.StatusInternalServerError, `{"error":"db down"}`)
	rc := newResourceClient(t, srv.URL)

	_, err := rc.ListResources(context.Background())
	var te *TransportError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
}

func TestCreateResource(t *testing.T) {
	srv, reqs := newStubServer(t, http.StatusCreated, `{"message":"Resource created"}`)
	rc := newResourceClient(t, srv.URL)

	err := rc.CreateResource(context.Background(), resource.NewResource{Name: "Widget", MaxUnits: 10})
	require.NoError(t, err)

	req := <-reqs
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/resources", req.Path)
	assert.JSONEq(t, `{"name":"Widget","max_units":10}`, req.Body)
}

func TestCreateResource_Failures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"api error", http.StatusBadRequest, `{"error":"exists"}`, IsAPIError},
		{"bare 500", http.StatusInternalServerError, `Internal Server Error`, IsTransportError},
		{"malformed 2xx", http.StatusCreated, `not json`, IsDecodeError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newStubServer(t, tc.status, tc.body)
			rc := newResourceClient(t, srv.URL)
			err := rc.CreateResource(context.Background(), resource.NewResource{Name: "Widget", MaxUnits: 1})
			assert.True(t, tc.check(err), "got %v", err)
		})
	}
}

func TestAdjustQuantity(t *testing.T) {
	srv, reqs := newStubServer(t, http.StatusOK, `{"message":"Quantity updated"}`)
	rc := newResourceClient(t, srv.URL)

	require.NoError(t, rc.AdjustQuantity(context.Background(), "Widget", 1))

	req := <-reqs
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/api/resources/Widget/quantity", req.Path)

	var body map[string]int
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	assert.Equal(t, map[string]int{"change": 1}, body)
	assert.Len(t, reqs, 0)
}

func TestAdjustQuantity_EscapesName(t *testing.T) {
	srv, reqs := newStubServer(t, http.StatusOK, `{}`)
	rc := newResourceClient(t, srv.URL)

	require.NoError(t, rc.AdjustQuantity(context.Background(), "Steel Beams/2", -1))

	req := <-reqs
	assert.Equal(t, "/api/resources/Steel%20Beams%2F2/quantity", req.RawPath)
	assert.JSONEq(t, `{"change":-1}`, req.Body)
}

func TestAdjustQuantity_DotNamesStayInPath(t *testing.T) {
	cases := map[string]string{
		".":   "/api/resources/%2E/quantity",
		"..":  "/api/resources/%2E%2E/quantity",
		"...": "/api/resources/%2E%2E%2E/quantity",
		"a.b": "/api/resources/a.b/quantity",
	}
	for name, want := range cases {
		srv, reqs := newStubServer(t, http.StatusOK, `{}`)
		rc := newResourceClient(t, srv.URL)

		require.NoError(t, rc.AdjustQuantity(context.Background(), name, 1), name)
		req := <-reqs
		assert.Equal(t, want, req.RawPath, name)
		assert.Equal(t, "/api/resources/"+name+"/quantity", req.Path, name)
	}
}

func TestAdjustQuantity_EmptyNameSendsNothing(t *testing.T) {
	srv, reqs := newStubServer(t, http.StatusOK, `{}`)
	rc := newResourceClient(t, srv.URL)

	require.Error(t, rc.AdjustQuantity(context.Background(), "", 1))
	assert.Len(t, reqs, 0)
}

func TestBaseURLPrefixIsKept(t *testing.T) {
	srv, reqs := newStubServer(t, http.StatusOK, `[]`)
	rc := newResourceClient(t, srv.URL+"/backend")

	_, err := rc.ListResources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/backend/api/resources", (<-reqs).Path)
}

func TestCorrelationIDPropagated(t *testing.T) {
	srv, reqs := newStubServer(t, http.StatusOK, `[]`)
	rc := newResourceClient(t, srv.URL)

	ctx := middleware.WithCorrelationID(context.Background(), "cid-123")
	_, err := rc.ListResources(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cid-123", (<-reqs).Header.Get(middleware.HeaderCorrelationID))
}
