// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat conversation and
// the knowledge-base catalog.
package model

import "github.com/jeranaias/ragdesk/internal/api"

// =============================================================================
// KNOWLEDGE BASE
// =============================================================================

// KnowledgeBase is the application's view of a server-side dataset.
type KnowledgeBase struct {
	ID            string
	Name          string
	Description   string
	DocumentCount int
	ChunkCount    int
	Status        string
}

// KnowledgeBaseFromDataset converts the wire representation.
func KnowledgeBaseFromDataset(d api.Dataset) KnowledgeBase {
	return KnowledgeBase{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		DocumentCount: d.DocumentCount,
		ChunkCount:    d.ChunkCount,
		Status:        d.Status,
	}
}

// =============================================================================
// DOCUMENT
// =============================================================================

// DocumentStatus is the processing state of an uploaded document.
type DocumentStatus string

const (
	DocPending    DocumentStatus = "pending"
	DocProcessing DocumentStatus = "processing"
	DocCompleted  DocumentStatus = "completed"
	DocFailed     DocumentStatus = "failed"
)

// Document is the application's view of an uploaded file.
type Document struct {
	ID         string
	Name       string
	KBID       string
	Size       string
	Status     DocumentStatus
	ChunkCount int
}

// DocumentFromAPI converts the wire representation.
func DocumentFromAPI(d api.Document) Document {
	return Document{
		ID:         d.ID,
		Name:       d.Name,
		KBID:       d.KBID,
		Size:       d.Size,
		Status:     DocumentStatus(d.Status),
		ChunkCount: d.ChunkCount,
	}
}

// Catalog caches the last-fetched knowledge-base collection. It is an
// explicitly-refreshed read-through cache: nothing invalidates it except a
// re-fetch after a mutating call.
type Catalog struct {
	KnowledgeBases []KnowledgeBase
	Total          int

	// Selection state
	SelectedID string
	Documents  []Document
}

// Select marks a knowledge base as current. Documents are cleared; the
// caller fetches them separately.
func (c *Catalog) Select(id string) {
	c.SelectedID = id
	c.Documents = nil
}

// ClearSelection drops the current knowledge base and its document list.
func (c *Catalog) ClearSelection() {
	c.SelectedID = ""
	c.Documents = nil
}

// Selected returns the currently selected knowledge base, or nil.
func (c *Catalog) Selected() *KnowledgeBase {
	for i := range c.KnowledgeBases {
		if c.KnowledgeBases[i].ID == c.SelectedID {
			return &c.KnowledgeBases[i]
		}
	}
	return nil
}

// ReplaceAll swaps the cached collection after a list call. If the selected
// knowledge base no longer exists the selection is cleared along with its
// document list.
func (c *Catalog) ReplaceAll(kbs []KnowledgeBase, total int) {
	c.KnowledgeBases = kbs
	c.Total = total
	if c.SelectedID != "" && c.Selected() == nil {
		c.ClearSelection()
	}
}
