// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the local knowledge-base service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the service client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeHTTPStatus
	ErrTypeInvalidResponse
	ErrTypeTaskFailed
	ErrTypeNotFound
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeUnreachable, Message: "server unreachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrNotFound    = &ClientError{Type: ErrTypeNotFound, Message: "not found"}
)

// IsUnreachable checks if an error indicates the service cannot be reached.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnreachable
	}
	return errors.Is(err, ErrUnreachable)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// IsTransient reports whether an error is worth retrying from a polling loop:
// the host was unreachable or the request timed out. HTTP-level errors
// (4xx, 5xx, decode failures) are not transient.
func IsTransient(err error) bool {
	return IsUnreachable(err) || IsTimeout(err)
}

// IsNotFound checks if an error is a 404 from the service.
func IsNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the service client.
type ClientConfig struct {
	// BaseURL is the service base URL (default: http://localhost:8000)
	BaseURL string

	// Timeout for non-upload requests (default: 30s)
	Timeout time.Duration

	// UploadTimeout for multipart uploads, which can carry large files (default: 5m)
	UploadTimeout time.Duration

	// ChatID is the chat channel identifier used in the completions path
	// (default: "default")
	ChatID string

	// Model is the model name sent with chat completion requests
	// (default: "rag-default")
	Model string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       "http://localhost:8000",
		Timeout:       30 * time.Second,
		UploadTimeout: 5 * time.Minute,
		ChatID:        "default",
		Model:         "rag-default",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the knowledge-base service API.
//
// The Client is safe for concurrent use. It never retries failed requests;
// retry policy belongs to the caller (see the conversation package's poller).
type Client struct {
	config       *ClientConfig
	httpClient   *http.Client
	uploadClient *http.Client
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8000"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UploadTimeout == 0 {
		config.UploadTimeout = 5 * time.Minute
	}
	if config.ChatID == "" {
		config.ChatID = "default"
	}
	if config.Model == "" {
		config.Model = "rag-default"
	}

	return &Client{
		config:       config,
		httpClient:   &http.Client{Timeout: config.Timeout},
		uploadClient: &http.Client{Timeout: config.UploadTimeout},
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// BaseURL returns the configured service base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH AND STATUS
// =============================================================================

// Health checks service liveness via GET /api/health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.getJSON(ctx, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SystemStatus fetches the full system status. Unlike the other calls it
// never returns an error for reachability problems: those are folded into
// a StatusResult with Connected=false so callers can branch without
// exception handling.
func (c *Client) SystemStatus(ctx context.Context) StatusResult {
	var out SystemStatusResponse
	if err := c.getJSON(ctx, "/api/system/status", nil, &out); err != nil {
		msg := "server unreachable"
		if !IsUnreachable(err) {
			msg = err.Error()
		}
		return StatusResult{Connected: false, Message: msg}
	}
	if !out.Success {
		return StatusResult{Connected: false, Message: out.Message, Data: out.Data}
	}
	return StatusResult{Connected: true, Message: out.Message, Data: out.Data}
}

// SystemInfo fetches environment details via GET /api/system/info.
func (c *Client) SystemInfo(ctx context.Context) (*SystemInfoResponse, error) {
	var out SystemInfoResponse
	if err := c.getJSON(ctx, "/api/system/info", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// SendMessage sends a question on the legacy synchronous endpoint and returns
// the inline answer with its retrieved passages.
func (c *Client) SendMessage(ctx context.Context, question string) (*SendResponse, error) {
	var out SendResponse
	if err := c.postJSON(ctx, "/api/chat/send", SendRequest{Question: question}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatCompletions submits a chat request on the asynchronous endpoint.
// The response carries either a task id to poll or an inline answer.
func (c *Client) ChatCompletions(ctx context.Context, messages []ChatMessage) (*ChatCompletionsResponse, error) {
	path := "/api/v1/chats_openai/" + url.PathEscape(c.config.ChatID) + "/chat/completions"
	req := ChatCompletionsRequest{
		Model:    c.config.Model,
		Messages: messages,
	}
	var out ChatCompletionsResponse
	if err := c.postJSON(ctx, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTask fetches the status of an asynchronous chat task. If the primary
// path returns 404 the compatibility path /api/v1/tasks/{id} is tried once,
// since older service builds only register the short route.
func (c *Client) GetTask(ctx context.Context, taskID string) (*TaskResponse, error) {
	var out TaskResponse
	err := c.getJSON(ctx, "/api/v1/chats_openai/task/"+url.PathEscape(taskID), nil, &out)
	if err != nil && IsNotFound(err) {
		err = c.getJSON(ctx, "/api/v1/tasks/"+url.PathEscape(taskID), nil, &out)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// DATASET OPERATIONS
// =============================================================================

// ListDatasets fetches one page of knowledge bases.
func (c *Client) ListDatasets(ctx context.Context, page, pageSize int) (*DatasetListResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var out DatasetListResponse
	if err := c.getJSON(ctx, "/api/v1/datasets", q, &out); err != nil {
		return nil, err
	}
	if out.Code != 0 {
		return nil, &ClientError{Type: ErrTypeHTTPStatus, Message: envelopeMessage(out.Message, "list datasets failed")}
	}
	return &out, nil
}

// CreateDataset creates a knowledge base.
func (c *Client) CreateDataset(ctx context.Context, name, description string) (*Dataset, error) {
	req := CreateDatasetRequest{
		Name:        name,
		Description: description,
		ChunkMethod: "naive",
	}
	var out DatasetResponse
	if err := c.postJSON(ctx, "/api/v1/datasets", req, &out); err != nil {
		return nil, err
	}
	if out.Code != 0 || out.Data == nil {
		return nil, &ClientError{Type: ErrTypeHTTPStatus, Message: envelopeMessage(out.Message, "create dataset failed")}
	}
	return out.Data, nil
}

// DeleteDataset deletes a knowledge base and all its documents.
func (c *Client) DeleteDataset(ctx context.Context, id string) error {
	var out DatasetResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/api/v1/datasets/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return err
	}
	if out.Code != 0 {
		return &ClientError{Type: ErrTypeHTTPStatus, Message: envelopeMessage(out.Message, "delete dataset failed")}
	}
	return nil
}

// =============================================================================
// DOCUMENT OPERATIONS
// =============================================================================

// ListDocuments fetches one page of documents belonging to a knowledge base.
// keywords filters by name substring when non-empty.
func (c *Client) ListDocuments(ctx context.Context, kbID string, page, pageSize int, keywords string) (*DocumentListResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	if keywords != "" {
		q.Set("keywords", keywords)
	}

	var out DocumentListResponse
	if err := c.getJSON(ctx, "/api/v1/datasets/"+url.PathEscape(kbID)+"/documents", q, &out); err != nil {
		return nil, err
	}
	if out.Code != 0 {
		return nil, &ClientError{Type: ErrTypeHTTPStatus, Message: envelopeMessage(out.Message, "list documents failed")}
	}
	return &out, nil
}

// UploadDocument uploads a file into a knowledge base as multipart form data.
// The file is streamed through an io.Pipe rather than buffered in memory.
func (c *Client) UploadDocument(ctx context.Context, kbID, path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "cannot open file", Cause: err}
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	endpoint := c.config.BaseURL + "/api/v1/datasets/" + url.PathEscape(kbID) + "/documents"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpStatusError(resp)
	}

	var out DocumentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	if out.Code != 0 || out.Data == nil {
		return nil, &ClientError{Type: ErrTypeHTTPStatus, Message: envelopeMessage(out.Message, "upload failed")}
	}
	return out.Data, nil
}

// DeleteDocuments removes documents from a knowledge base by id.
// Returns the number of documents the server reports as deleted.
func (c *Client) DeleteDocuments(ctx context.Context, kbID string, ids []string) (int, error) {
	var out DeleteDocumentsResponse
	err := c.doJSON(ctx, http.MethodDelete, "/api/v1/datasets/"+url.PathEscape(kbID)+"/documents", nil, ids, &out)
	if err != nil {
		return 0, err
	}
	if out.Code != 0 {
		return 0, &ClientError{Type: ErrTypeHTTPStatus, Message: envelopeMessage(out.Message, "delete documents failed")}
	}
	if out.Data == nil {
		return 0, nil
	}
	return out.Data.DeletedCount, nil
}

// UploadFile uploads a file on the generic POST /api/upload endpoint.
func (c *Client) UploadFile(ctx context.Context, path string) (*UploadResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "cannot open file", Cause: err}
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/upload", pr)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpStatusError(resp)
	}

	var out UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return &out, nil
}

// =============================================================================
// RETRIEVER OPERATIONS
// =============================================================================

// TestRetriever runs a retrieval-only query for diagnostics.
func (c *Client) TestRetriever(ctx context.Context, query string) (*RetrieverTestResponse, error) {
	var out RetrieverTestResponse
	if err := c.postJSON(ctx, "/api/retriever/test", SendRequest{Question: query}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RetrieverStats fetches vector store statistics.
func (c *Client) RetrieverStats(ctx context.Context) (*RetrieverStatsResponse, error) {
	var out RetrieverStatsResponse
	if err := c.getJSON(ctx, "/api/retriever/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, out)
}

// doJSON performs one JSON round trip. Every failure mode is converted to a
// *ClientError; no raw net/http or json errors escape this package.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		if msg := readErrorBody(resp); msg != "" {
			return &ClientError{Type: ErrTypeNotFound, Message: msg}
		}
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpStatusError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// transportError maps a net/http transport failure to a client error.
func transportError(err error) *ClientError {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return &ClientError{Type: ErrTypeTimeout, Message: "request canceled", Cause: err}
	}
	return &ClientError{Type: ErrTypeUnreachable, Message: "server unreachable", Cause: err}
}

// httpStatusError builds an error from a non-2xx response, preferring the
// message/detail field of a JSON error body when one is present.
func httpStatusError(resp *http.Response) *ClientError {
	if msg := readErrorBody(resp); msg != "" {
		return &ClientError{Type: ErrTypeHTTPStatus, Message: msg}
	}
	return &ClientError{
		Type:    ErrTypeHTTPStatus,
		Message: fmt.Sprintf("request failed: %s", resp.Status),
	}
}

// readErrorBody extracts a human-readable message from a JSON error body.
// Returns "" when the body is absent or not JSON.
func readErrorBody(resp *http.Response) string {
	var e apiError
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&e); err != nil {
		return ""
	}
	return e.text()
}

// envelopeMessage prefers the server's envelope message over a fallback.
func envelopeMessage(msg, fallback string) string {
	if msg != "" && msg != "success" {
		return msg
	}
	return fallback
}
