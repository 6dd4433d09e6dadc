// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClientWithConfig(&ClientConfig{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
	return client, srv
}

// =============================================================================
// HEALTH AND STATUS TESTS
// =============================================================================

func TestHealth(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(HealthResponse{Status: "healthy", Service: "rag", RAGAvailable: true})
	}))

	resp, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if resp.Status != "healthy" || !resp.RAGAvailable {
		t.Errorf("Health() = %+v", resp)
	}
}

func TestSystemStatus_Connected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SystemStatusResponse{
			Success: true,
			Data:    &SystemStatusData{Service: "rag", TotalKnowledgeBases: 3},
		})
	}))

	result := client.SystemStatus(context.Background())
	if !result.Connected {
		t.Fatalf("Connected = false, message %q", result.Message)
	}
	if result.Data.TotalKnowledgeBases != 3 {
		t.Errorf("TotalKnowledgeBases = %d, want 3", result.Data.TotalKnowledgeBases)
	}
}

func TestSystemStatus_Unreachable(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{
		BaseURL: "http://127.0.0.1:1", // nothing listens here
		Timeout: 500 * time.Millisecond,
	})

	result := client.SystemStatus(context.Background())
	if result.Connected {
		t.Fatal("Connected = true against a dead endpoint")
	}
	if result.Message == "" {
		t.Error("expected a human-readable message")
	}
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestChatCompletions_AsyncHandle(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := "/api/v1/chats_openai/default/chat/completions"
		if r.URL.Path != want {
			t.Errorf("path = %q, want %q", r.URL.Path, want)
		}
		var req ChatCompletionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(ChatCompletionsResponse{TaskID: "t-1", Status: TaskProcessing})
	}))

	resp, err := client.ChatCompletions(context.Background(), []ChatMessage{NewUserChatMessage("hi")})
	if err != nil {
		t.Fatalf("ChatCompletions() error: %v", err)
	}
	if !resp.Async() || resp.TaskID != "t-1" {
		t.Errorf("resp = %+v, want async task t-1", resp)
	}
}

func TestChatCompletions_InlineAnswer(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatCompletionsResponse{
			Choices: []ChatChoice{{Message: ChatMessage{Role: "assistant", Content: "inline answer"}}},
		})
	}))

	resp, err := client.ChatCompletions(context.Background(), []ChatMessage{NewUserChatMessage("hi")})
	if err != nil {
		t.Fatalf("ChatCompletions() error: %v", err)
	}
	if resp.Async() {
		t.Fatal("Async() = true for inline response")
	}
	content, ok := resp.InlineContent()
	if !ok || content != "inline answer" {
		t.Errorf("InlineContent() = %q, %v", content, ok)
	}
}

func TestGetTask_FallbackRoute(t *testing.T) {
	var primaryHits, fallbackHits int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/chats_openai/task/t-9":
			primaryHits++
			http.NotFound(w, r)
		case "/api/v1/tasks/t-9":
			fallbackHits++
			json.NewEncoder(w).Encode(TaskResponse{Status: TaskGenerating})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))

	resp, err := client.GetTask(context.Background(), "t-9")
	if err != nil {
		t.Fatalf("GetTask() error: %v", err)
	}
	if resp.Status != TaskGenerating {
		t.Errorf("Status = %q, want generating", resp.Status)
	}
	if primaryHits != 1 || fallbackHits != 1 {
		t.Errorf("hits = %d/%d, want 1/1", primaryHits, fallbackHits)
	}
}

func TestGetTask_CompletedResult(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(TaskResponse{
			Status: TaskCompleted,
			Result: &ChatCompletionResult{
				Choices: []ChatChoice{{Message: ChatMessage{Role: "assistant", Content: "done"}}},
			},
		})
	}))

	resp, err := client.GetTask(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("GetTask() error: %v", err)
	}
	content, ok := resp.Result.Content()
	if !ok || content != "done" {
		t.Errorf("Content() = %q, %v", content, ok)
	}
}

// =============================================================================
// ERROR HANDLING TESTS
// =============================================================================

func TestErrorClassification(t *testing.T) {
	t.Run("http 500", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail": "boom"}`, http.StatusInternalServerError)
		}))
		_, err := client.Health(context.Background())
		if err == nil {
			t.Fatal("expected error")
		}
		if IsTransient(err) {
			t.Error("HTTP 500 should not be transient")
		}
	})

	t.Run("unreachable is transient", func(t *testing.T) {
		client := NewClientWithConfig(&ClientConfig{
			BaseURL: "http://127.0.0.1:1",
			Timeout: 500 * time.Millisecond,
		})
		_, err := client.Health(context.Background())
		if err == nil {
			t.Fatal("expected error")
		}
		if !IsUnreachable(err) {
			t.Errorf("IsUnreachable = false for %v", err)
		}
		if !IsTransient(err) {
			t.Error("unreachable should be transient")
		}
	})

	t.Run("404 is not found", func(t *testing.T) {
		client, _ := newTestClient(t, http.NotFoundHandler())
		_, err := client.Health(context.Background())
		if !IsNotFound(err) {
			t.Errorf("IsNotFound = false for %v", err)
		}
	})
}

func TestTaskStatus(t *testing.T) {
	if !TaskCompleted.Terminal() || !TaskFailed.Terminal() {
		t.Error("completed and failed must be terminal")
	}
	for _, s := range []TaskStatus{TaskProcessing, TaskRetrieving, TaskGenerating} {
		if s.Terminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
	if TaskStatus("warming_up").Known() {
		t.Error("unknown status must not be Known")
	}
}

// =============================================================================
// DATASET AND DOCUMENT TESTS
// =============================================================================

func TestListDatasets(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page_size"); got != "30" {
			t.Errorf("page_size = %q, want 30", got)
		}
		json.NewEncoder(w).Encode(DatasetListResponse{
			Code:  0,
			Data:  []Dataset{{ID: "kb1", Name: "Manuals", DocumentCount: 4}},
			Total: 1,
		})
	}))

	resp, err := client.ListDatasets(context.Background(), 1, 30)
	if err != nil {
		t.Fatalf("ListDatasets() error: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Name != "Manuals" {
		t.Errorf("Data = %+v", resp.Data)
	}
}

func TestCreateDataset_EnvelopeError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(DatasetResponse{Code: 102, Message: "name already exists"})
	}))

	_, err := client.CreateDataset(context.Background(), "Manuals", "")
	if err == nil {
		t.Fatal("expected envelope error")
	}
	if got := err.Error(); got != "name already exists" {
		t.Errorf("error = %q, want server message", got)
	}
}

func TestUploadDocument_Multipart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/datasets/kb1/documents" {
			t.Errorf("path = %q", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		if header.Filename != "doc.txt" {
			t.Errorf("filename = %q, want doc.txt", header.Filename)
		}
		json.NewEncoder(w).Encode(DocumentResponse{
			Code: 0,
			Data: &Document{ID: "d1", Name: "doc.txt", Status: "pending"},
		})
	}))

	doc, err := client.UploadDocument(context.Background(), "kb1", path)
	if err != nil {
		t.Fatalf("UploadDocument() error: %v", err)
	}
	if doc.ID != "d1" || doc.Status != "pending" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestDeleteDocuments(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %q", r.Method)
		}
		var ids []string
		if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
			t.Fatalf("decode ids: %v", err)
		}
		resp := DeleteDocumentsResponse{Code: 0}
		resp.Data = &struct {
			DeletedCount int `json:"deleted_count"`
		}{DeletedCount: len(ids)}
		json.NewEncoder(w).Encode(resp)
	}))

	n, err := client.DeleteDocuments(context.Background(), "kb1", []string{"d1", "d2"})
	if err != nil {
		t.Fatalf("DeleteDocuments() error: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
}

func TestSendMessage_Legacy(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/send" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(SendResponse{
			Answer:  "the answer",
			Reviews: []string{"passage one"},
			Status:  "success",
		})
	}))

	resp, err := client.SendMessage(context.Background(), "question")
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if resp.Answer != "the answer" || len(resp.Reviews) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}
