// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the local knowledge-base service.
package api

// =============================================================================
// TASK STATUS
// =============================================================================

// TaskStatus is the closed set of states a server-side chat task moves through.
type TaskStatus string

const (
	// TaskProcessing means the task has been accepted but work has not started.
	TaskProcessing TaskStatus = "processing"

	// TaskRetrieving means the service is searching the knowledge base.
	TaskRetrieving TaskStatus = "retrieving"

	// TaskGenerating means retrieval finished and the answer is being written.
	TaskGenerating TaskStatus = "generating"

	// TaskCompleted means the final answer is available in the task result.
	TaskCompleted TaskStatus = "completed"

	// TaskFailed means the service gave up; the task carries an error message.
	TaskFailed TaskStatus = "failed"
)

// String returns the string representation of the status.
func (s TaskStatus) String() string {
	return string(s)
}

// Terminal reports whether no further status changes can occur.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Known reports whether the status is one of the documented values.
// The server is trusted but not blindly: an unknown status is treated
// as non-terminal by the poller rather than crashing the turn.
func (s TaskStatus) Known() bool {
	switch s {
	case TaskProcessing, TaskRetrieving, TaskGenerating, TaskCompleted, TaskFailed:
		return true
	}
	return false
}

// =============================================================================
// HEALTH AND SYSTEM STATUS
// =============================================================================

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status       string `json:"status"`
	Service      string `json:"service"`
	Timestamp    string `json:"timestamp"`
	RAGAvailable bool   `json:"rag_available"`
}

// SystemStatusResponse is the envelope of GET /api/system/status.
type SystemStatusResponse struct {
	Success bool             `json:"success"`
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Data    *SystemStatusData `json:"data"`
}

// SystemStatusData is the opaque status payload inside the envelope.
type SystemStatusData struct {
	Status              string `json:"status"`
	Service             string `json:"service"`
	Version             string `json:"version"`
	Mode                string `json:"mode"`
	RAGAvailable        bool   `json:"rag_available"`
	TotalKnowledgeBases int    `json:"total_knowledge_bases"`
	TotalDocuments      int    `json:"total_documents"`
	VectorStoreDocs     int    `json:"vector_store_documents"`
}

// StatusResult is what SystemStatus returns to callers. Reachability problems
// are folded into Connected=false with a human-readable message instead of an
// error, so status checks never need exception-style handling.
type StatusResult struct {
	Connected bool
	Message   string
	Data      *SystemStatusData
}

// SystemInfoResponse is the body of GET /api/system/info.
type SystemInfoResponse struct {
	RAGAvailable bool            `json:"rag_available"`
	SystemStats  map[string]any  `json:"system_stats"`
	DataFiles    map[string]bool `json:"data_files"`
}

// =============================================================================
// CHAT
// =============================================================================

// ChatMessage is one entry of an OpenAI-style messages array.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewUserChatMessage builds a user-role chat message.
func NewUserChatMessage(content string) ChatMessage {
	return ChatMessage{Role: "user", Content: content}
}

// ChatCompletionsRequest is the body of POST /api/v1/chats_openai/{id}/chat/completions.
type ChatCompletionsRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// ChatCompletionsResponse carries either a task handle (asynchronous path) or
// inline choices (legacy inline path). Exactly one of TaskID / Choices is set
// by the server.
type ChatCompletionsResponse struct {
	TaskID  string     `json:"task_id,omitempty"`
	Status  TaskStatus `json:"status,omitempty"`
	Message string     `json:"message,omitempty"`
	PollURL string     `json:"poll_url,omitempty"`

	// Inline path
	Choices []ChatChoice `json:"choices,omitempty"`
}

// Async reports whether the response carries a task handle to poll.
func (r *ChatCompletionsResponse) Async() bool {
	return r.TaskID != ""
}

// InlineContent returns the answer text of the first inline choice, if any.
func (r *ChatCompletionsResponse) InlineContent() (string, bool) {
	if len(r.Choices) == 0 {
		return "", false
	}
	c := r.Choices[0].Message.Content
	return c, c != ""
}

// ChatChoice is one OpenAI-style completion choice.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatCompletionResult is the OpenAI-style result stored on a completed task.
type ChatCompletionResult struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
}

// Content returns the answer text of the first choice, if any.
func (r *ChatCompletionResult) Content() (string, bool) {
	if r == nil || len(r.Choices) == 0 {
		return "", false
	}
	c := r.Choices[0].Message.Content
	return c, c != ""
}

// TaskResponse is the body of GET /api/v1/chats_openai/task/{id}.
type TaskResponse struct {
	Status  TaskStatus            `json:"status"`
	Message string                `json:"message,omitempty"`
	Error   string                `json:"error,omitempty"`
	Result  *ChatCompletionResult `json:"result,omitempty"`
}

// SendRequest is the body of the legacy POST /api/chat/send.
type SendRequest struct {
	Question string `json:"question"`
}

// SendResponse is the legacy synchronous answer with retrieved passages.
type SendResponse struct {
	Answer  string   `json:"answer"`
	Reviews []string `json:"reviews"`
	Status  string   `json:"status"`
}

// =============================================================================
// DATASETS (KNOWLEDGE BASES)
// =============================================================================

// Dataset is the wire representation of a knowledge base.
type Dataset struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ChunkMethod   string `json:"chunk_method,omitempty"`
	DocumentCount int    `json:"document_count"`
	ChunkCount    int    `json:"chunk_count"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// DatasetListResponse is the paged envelope of GET /api/v1/datasets.
type DatasetListResponse struct {
	Code     int       `json:"code"`
	Message  string    `json:"message"`
	Data     []Dataset `json:"data"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// CreateDatasetRequest is the body of POST /api/v1/datasets.
type CreateDatasetRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
	ChunkMethod    string `json:"chunk_method,omitempty"`
}

// DatasetResponse is the envelope returned by create/delete dataset calls.
type DatasetResponse struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Data    *Dataset `json:"data"`
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// Document is the wire representation of an uploaded document.
type Document struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	KBID       string `json:"kb_id"`
	Size       string `json:"size"`
	Status     string `json:"status"` // pending | processing | completed | failed
	ChunkCount int    `json:"chunk_num"`
	Type       string `json:"type,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// DocumentListResponse is the paged envelope of GET /api/v1/datasets/{id}/documents.
type DocumentListResponse struct {
	Code     int        `json:"code"`
	Message  string     `json:"message"`
	Data     []Document `json:"data"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// DocumentResponse is the envelope returned by the document upload call.
type DocumentResponse struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Data    *Document `json:"data"`
}

// DeleteDocumentsResponse is the envelope returned by batch document deletion.
type DeleteDocumentsResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    *struct {
		DeletedCount int `json:"deleted_count"`
	} `json:"data"`
}

// UploadResponse is the body of the generic POST /api/upload.
type UploadResponse struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

// =============================================================================
// RETRIEVER
// =============================================================================

// RetrieverHit is one passage returned by the retriever test endpoint.
type RetrieverHit struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// RetrieverTestResponse is the body of POST /api/retriever/test.
type RetrieverTestResponse struct {
	Query   string         `json:"query"`
	Results []RetrieverHit `json:"results"`
	Count   int            `json:"count"`
	Status  string         `json:"status"`
}

// RetrieverStatsResponse is the body of GET /api/retriever/stats.
type RetrieverStatsResponse struct {
	DocumentCount  int    `json:"document_count"`
	CSVRecords     int    `json:"csv_records"`
	KnowledgeBases int    `json:"knowledge_bases"`
	TotalDocuments int    `json:"total_documents"`
	Status         string `json:"status"`
}

// apiError is the error shape some endpoints return on non-2xx responses.
type apiError struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (e *apiError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Detail
}
