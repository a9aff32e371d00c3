// Package apiclient is the HTTP client for the Vellum annotation service.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/starford/vellum/internal/models"
)

// ErrDestroyed is returned by every call made after Destroy.
var ErrDestroyed = errors.New("apiclient: client destroyed")

// Client talks to the annotation REST API. It is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	user    models.User
	http    *http.Client

	base   context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithUser identifies the acting user through the X-User-Id and X-User-Name
// headers. The service records it as the annotation author.
func WithUser(u models.User) Option {
	return func(c *Client) {
		c.user = u
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a client for the API rooted at baseURL (e.g. http://host/api).
func New(baseURL string, opts ...Option) *Client {
	base, cancel := context.WithCancel(context.Background())
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		base:    base,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Destroy aborts every in-flight request and makes later calls fail with
// ErrDestroyed.
func (c *Client) Destroy() {
	c.once.Do(c.cancel)
}

// Fork returns a client with the same settings whose Destroy aborts only the
// requests made through it. Destroying c still aborts the fork's requests.
func (c *Client) Fork() *Client {
	base, cancel := context.WithCancel(c.base)
	return &Client{
		baseURL: c.baseURL,
		token:   c.token,
		user:    c.user,
		http:    c.http,
		base:    base,
		cancel:  cancel,
	}
}

// CreateAnnotation posts payload for the given file.
func (c *Client) CreateAnnotation(ctx context.Context, fileID, fileVersionID string, payload models.NewAnnotation) (*models.Annotation, error) {
	payload.FileVersion.ID = fileVersionID
	var out models.Annotation
	if err := c.do(ctx, http.MethodPost, "/files/"+url.PathEscape(fileID)+"/annotations", nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAnnotations lists annotations for a file version. With fetchAll it
// follows next_marker until the listing is exhausted and returns one merged
// page.
func (c *Client) GetAnnotations(ctx context.Context, fileID, fileVersionID string, limit int, fetchAll bool) (*models.AnnotationPage, error) {
	q := url.Values{}
	q.Set("version_id", fileVersionID)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/files/" + url.PathEscape(fileID) + "/annotations"

	var merged models.AnnotationPage
	merged.Entries = []models.Annotation{}
	for {
		var page models.AnnotationPage
		if err := c.do(ctx, http.MethodGet, path, q, nil, &page); err != nil {
			return nil, err
		}
		merged.Entries = append(merged.Entries, page.Entries...)
		merged.Limit = page.Limit
		merged.NextMarker = page.NextMarker
		if !fetchAll || page.NextMarker == nil || *page.NextMarker == "" {
			return &merged, nil
		}
		q.Set("marker", *page.NextMarker)
	}
}

// GetAnnotation fetches one annotation.
func (c *Client) GetAnnotation(ctx context.Context, id string) (*models.Annotation, error) {
	var out models.Annotation
	if err := c.do(ctx, http.MethodGet, "/annotations/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAnnotation removes an annotation.
func (c *Client) DeleteAnnotation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/annotations/"+url.PathEscape(id), nil, nil, nil)
}

type collaboratorsResponse struct {
	Entries []models.Collaborator `json:"entries"`
}

// GetFileCollaborators lists the collaborators of a file.
func (c *Client) GetFileCollaborators(ctx context.Context, fileID string, opts models.CollaboratorsOptions) ([]models.Collaborator, error) {
	q := url.Values{}
	q.Set("include_groups", strconv.FormatBool(opts.IncludeGroups))
	q.Set("include_uploader_collabs", strconv.FormatBool(opts.IncludeUploaderCollabs))
	var out collaboratorsResponse
	if err := c.do(ctx, http.MethodGet, "/files/"+url.PathEscape(fileID)+"/collaborators", q, nil, &out); err != nil {
		return nil, err
	}
	if out.Entries == nil {
		out.Entries = []models.Collaborator{}
	}
	return out.Entries, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.base.Err() != nil {
		return ErrDestroyed
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.base, cancel)
	defer stop()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.user.ID != "" {
		req.Header.Set("X-User-Id", c.user.ID)
		req.Header.Set("X-User-Name", c.user.Name)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if c.base.Err() != nil {
			return ErrDestroyed
		}
		return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("apiclient: decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &models.APIError{}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		apiErr = &models.APIError{
			Type:    "error",
			Code:    "http_error",
			Message: http.StatusText(resp.StatusCode),
		}
	}
	apiErr.Status = resp.StatusCode
	if apiErr.RequestID == "" {
		apiErr.RequestID = resp.Header.Get("X-Request-Id")
	}
	return apiErr
}
