// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultAPIURL is the GitHub REST API base URL.
	DefaultAPIURL = "https://api.github.com"
	// DefaultOwner is the owner of the upstream template repository.
	DefaultOwner = "github"
	// DefaultRepo is the upstream template repository.
	DefaultRepo = "gitignore"
	// DefaultTimeout bounds every single request.
	DefaultTimeout = 30 * time.Second

	// maxJSONResponseBytes is the upper bound on a directory listing (10 MB).
	maxJSONResponseBytes = 10 << 20

	// maxTemplateBytes is the upper bound on a single template body (4 MB).
	maxTemplateBytes = 4 << 20
)

type (
	// Client fetches the template catalog and template bodies. Every method
	// makes exactly one attempt per request; retry and fallback policy belong
	// to the caller.
	Client struct {
		httpClient  *http.Client
		apiURL      string
		owner       string
		repo        string
		ref         string
		directories []string
		token       string
		userAgent   string
		timeout     time.Duration
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)

	// contentItem is the JSON wire format of one GitHub contents API entry.
	contentItem struct {
		Name        string `json:"name"`
		Path        string `json:"path"`
		Type        string `json:"type"`
		DownloadURL string `json:"download_url"`
	}
)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy configurations.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIURL overrides the GitHub API base URL, primarily for test servers.
func WithAPIURL(base string) ClientOption {
	return func(cl *Client) {
		cl.apiURL = strings.TrimRight(base, "/")
	}
}

// WithRepo overrides the template repository owner and name.
func WithRepo(owner, repo string) ClientOption {
	return func(cl *Client) {
		cl.owner = owner
		cl.repo = repo
	}
}

// WithRef pins the catalog to a branch, tag or commit. Empty means the
// repository's default branch.
func WithRef(ref string) ClientOption {
	return func(cl *Client) {
		cl.ref = ref
	}
}

// WithDirectories sets the subdirectories listed in addition to the
// repository root.
func WithDirectories(dirs ...string) ClientOption {
	return func(cl *Client) {
		cl.directories = dirs
	}
}

// WithToken sets a GitHub token for authenticated requests (higher rate limit).
func WithToken(token string) ClientOption {
	return func(cl *Client) {
		cl.token = token
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// WithTimeout bounds each individual request. Non-positive values keep the default.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// NewClient creates a Client for github/gitignore with a 30 second
// per-request timeout. The Global directory is listed besides the root.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  http.DefaultClient,
		apiURL:      DefaultAPIURL,
		owner:       DefaultOwner,
		repo:        DefaultRepo,
		directories: []string{"Global"},
		userAgent:   "gi/dev",
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source returns a short description of where the catalog comes from,
// e.g. "github/gitignore (HEAD)".
func (c *Client) Source() string {
	ref := c.ref
	if ref == "" {
		ref = "HEAD"
	}
	return fmt.Sprintf("%s/%s (%s)", c.owner, c.repo, ref)
}

// FetchCatalog lists the repository root and every configured directory and
// returns all *.gitignore files as a Catalog.
func (c *Client) FetchCatalog(ctx context.Context) (*Catalog, error) {
	dirs := append([]string{""}, c.directories...)

	var entries []Entry
	for _, dir := range dirs {
		items, err := c.listDirectory(ctx, dir)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if item.Type != "file" || !strings.HasSuffix(item.Name, TemplateSuffix) {
				continue
			}
			if item.DownloadURL == "" {
				continue
			}
			entries = append(entries, Entry{
				Name:     strings.TrimSuffix(item.Path, TemplateSuffix),
				Locator:  item.DownloadURL,
				Category: CategoryFor(dir),
			})
		}
	}

	return New(entries), nil
}

// FetchTemplate downloads the template body at locator. A 404 response
// yields ErrNotFound; every other failure yields a *NetworkError.
func (c *Client) FetchTemplate(ctx context.Context, locator string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.doRequest(ctx, locator, "text/plain")
	if err != nil {
		return nil, &NetworkError{URL: redactURL(locator), Err: err}
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", redactURL(locator), ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, &NetworkError{URL: redactURL(locator), Err: statusError(resp)}
	}

	body, err := readLimited(resp.Body, maxTemplateBytes)
	if err != nil {
		return nil, &NetworkError{URL: redactURL(locator), Err: err}
	}
	return body, nil
}

// listDirectory fetches one contents API listing.
func (c *Client) listDirectory(ctx context.Context, dir string) ([]contentItem, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	listURL := c.contentsURL(dir)
	resp, err := c.doRequest(ctx, listURL, "application/vnd.github+json")
	if err != nil {
		return nil, &NetworkError{URL: listURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if rlErr := checkRateLimit(resp); rlErr != nil {
		return nil, &NetworkError{URL: listURL, Err: rlErr}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{URL: listURL, Err: statusError(resp)}
	}

	body, err := readLimited(resp.Body, maxJSONResponseBytes)
	if err != nil {
		return nil, &NetworkError{URL: listURL, Err: err}
	}

	var items []contentItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, &ParseError{URL: listURL, Err: err}
	}
	for i, item := range items {
		if item.Name == "" || item.Path == "" || item.Type == "" {
			return nil, &ParseError{URL: listURL, Err: fmt.Errorf("item %d: missing name, path or type", i)}
		}
	}
	return items, nil
}

// readLimited reads at most limit bytes. A longer body is an error rather
// than a silently truncated result.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return body, nil
}

// contentsURL builds the contents API URL for dir ("" is the repository root).
// Nested directories keep their slashes; each segment is escaped.
func (c *Client) contentsURL(dir string) string {
	u := fmt.Sprintf("%s/repos/%s/%s/contents", c.apiURL, c.owner, c.repo)
	if dir = strings.Trim(dir, "/"); dir != "" {
		segs := strings.Split(dir, "/")
		for i, seg := range segs {
			segs[i] = url.PathEscape(seg)
		}
		u += "/" + strings.Join(segs, "/")
	}
	if c.ref != "" {
		u += "?ref=" + url.QueryEscape(c.ref)
	}
	return u
}

// doRequest creates and executes a GET request with the common headers.
func (c *Client) doRequest(ctx context.Context, reqURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.userAgent)

	// Only attach the token when the request targets a known GitHub host.
	if c.token != "" && isGitHubHost(req.URL, c.apiURL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("timed out after %s: %w", c.timeout, err)
		}
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

// checkRateLimit returns a RateLimitError when X-RateLimit-Remaining is zero
// on a non-OK response.
func checkRateLimit(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return nil
	}
	if rem, err := strconv.Atoi(remaining); err != nil || rem > 0 {
		return nil
	}

	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))                 //nolint:errcheck // Best-effort header parsing.
	resetUnix, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64) //nolint:errcheck // Best-effort header parsing.
	return &RateLimitError{Limit: limit, ResetAt: time.Unix(resetUnix, 0)}
}

func statusError(resp *http.Response) error {
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}

// isGitHubHost reports whether reqURL targets a host the token may be sent to:
// the configured API host and, for the public API, the raw content host.
func isGitHubHost(reqURL *url.URL, apiURL string) bool {
	base, err := url.Parse(apiURL)
	if err != nil {
		return false
	}
	if strings.EqualFold(reqURL.Host, base.Host) {
		return true
	}
	if strings.EqualFold(base.Host, "api.github.com") {
		return strings.EqualFold(reqURL.Host, "raw.githubusercontent.com") ||
			strings.EqualFold(reqURL.Host, "github.com")
	}
	return false
}

// redactURL strips query parameters and fragments for safe inclusion in errors.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
