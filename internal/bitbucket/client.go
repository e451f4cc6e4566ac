package bitbucket

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

	"golang.org/x/oauth2"

	"github.com/yogeshhrathod/bitbucket-mcp/internal/config"
	"github.com/yogeshhrathod/bitbucket-mcp/internal/logging"
)

// tokenSource implements oauth2.TokenSource for a static API token.
type tokenSource struct {
	accessToken string
}

func (t *tokenSource) Token() (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: t.accessToken}, nil
}

// Client is the dialect-aware Bitbucket API client. The dialect is chosen
// once at construction from the base URL and never re-evaluated.
type Client struct {
	Operations

	baseURL string
	isCloud bool
	log     *logging.Logger
}

// New builds a Client from the resolved configuration. Cloud gets basic
// auth (email + API token); everything else gets a bearer token via an
// oauth2 client.
func New(cfg *config.Config, timeout time.Duration, log *logging.Logger) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	base := &http.Client{Timeout: timeout}

	rt := &rest{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		log:     log.Sub("bitbucket"),
	}
	if cfg.AuthScheme == config.AuthBearer {
		octx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		rt.http = oauth2.NewClient(octx, &tokenSource{accessToken: cfg.APICredential})
	} else {
		rt.http = base
		rt.basicUser = cfg.UserIdentity
		rt.basicPass = cfg.APICredential
	}

	c := &Client{
		baseURL: rt.baseURL,
		isCloud: cfg.IsCloud(),
		log:     rt.log,
	}
	if c.isCloud {
		c.Operations = &cloudAPI{rest: rt}
	} else {
		c.Operations = &serverAPI{rest: rt}
	}
	return c
}

// IsCloud reports which dialect the client speaks.
func (c *Client) IsCloud() bool { return c.isCloud }

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// TestResult is the non-throwing outcome of TestConnection.
type TestResult struct {
	Success   bool      `json:"success"`
	ErrorKind ErrorKind `json:"errorKind,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// TestConnection succeeds iff listing workspaces succeeds. Any failure is
// converted into a result value rather than propagated.
func (c *Client) TestConnection(ctx context.Context) TestResult {
	if _, err := c.ListWorkspaces(ctx); err != nil {
		c.log.Warn().Err(err).Msg("connection test failed")
		return TestResult{Success: false, ErrorKind: KindConnectionTest, Error: err.Error()}
	}
	return TestResult{Success: true}
}

// rest is the shared HTTP plumbing beneath both dialects.
type rest struct {
	baseURL   string
	http      *http.Client
	basicUser string
	basicPass string
	log       *logging.Logger
}

// do performs one HTTP request and returns the raw response body. Failures
// come back as a *StructuredError; nothing is retried here.
func (r *rest) do(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	u := r.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.basicUser != "" {
		req.SetBasicAuth(r.basicUser, r.basicPass)
	}

	r.log.Debug().Str("method", method).Str("path", path).Msg("api request")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, classifyTransport(method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(method, path, err)
	}

	if resp.StatusCode >= 400 {
		return nil, classifyStatus(method, path, resp.StatusCode, respBody)
	}
	return respBody, nil
}

// doJSON performs a request expecting a JSON response body.
func (r *rest) doJSON(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	respBody, err := r.do(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return json.RawMessage(`{"status":"ok"}`), nil
	}
	return json.RawMessage(respBody), nil
}

// doText performs a request whose response is plain text (diffs, raw files).
func (r *rest) doText(ctx context.Context, method, path string, query url.Values) (string, error) {
	respBody, err := r.do(ctx, method, path, query, nil)
	if err != nil {
		return "", err
	}
	return string(respBody), nil
}

// apiPath joins segments into a path, percent-encoding each one.
func apiPath(segments ...string) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(parts, "/")
}

// escapeFilePath percent-encodes each segment of a slash-separated file
// path while keeping the separators.
func escapeFilePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
