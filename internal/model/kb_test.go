// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"

	"github.com/jeranaias/ragdesk/internal/api"
)

// =============================================================================
// CONVERSION TESTS
// =============================================================================

func TestKnowledgeBaseFromDataset(t *testing.T) {
	kb := KnowledgeBaseFromDataset(api.Dataset{
		ID:            "kb1",
		Name:          "Manuals",
		Description:   "product manuals",
		DocumentCount: 4,
		ChunkCount:    120,
		Status:        "ready",
	})
	if kb.ID != "kb1" || kb.Name != "Manuals" || kb.DocumentCount != 4 || kb.ChunkCount != 120 {
		t.Errorf("KnowledgeBaseFromDataset() = %+v", kb)
	}
}

func TestDocumentFromAPI(t *testing.T) {
	doc := DocumentFromAPI(api.Document{
		ID:         "d1",
		Name:       "tucson.pdf",
		KBID:       "kb1",
		Size:       "2.4 MB",
		Status:     "processing",
		ChunkCount: 30,
	})
	if doc.Status != DocProcessing {
		t.Errorf("Status = %v, want processing", doc.Status)
	}
	if doc.Name != "tucson.pdf" || doc.KBID != "kb1" || doc.ChunkCount != 30 {
		t.Errorf("DocumentFromAPI() = %+v", doc)
	}
}

// =============================================================================
// CATALOG TESTS
// =============================================================================

func TestCatalogSelection(t *testing.T) {
	c := &Catalog{}
	c.ReplaceAll([]KnowledgeBase{
		{ID: "kb1", Name: "Manuals"},
		{ID: "kb2", Name: "Policies"},
	}, 2)

	if got := c.Selected(); got != nil {
		t.Errorf("Selected() = %v before any selection", got)
	}

	c.Select("kb2")
	c.Documents = []Document{{ID: "d1"}}

	got := c.Selected()
	if got == nil || got.Name != "Policies" {
		t.Fatalf("Selected() = %v, want Policies", got)
	}

	// Re-selecting clears the stale document list.
	c.Select("kb1")
	if c.Documents != nil {
		t.Error("Select() must clear the document list")
	}

	c.ClearSelection()
	if c.SelectedID != "" || c.Selected() != nil {
		t.Error("ClearSelection() left selection state behind")
	}
}

func TestCatalogReplaceAllClearsVanishedSelection(t *testing.T) {
	c := &Catalog{}
	c.ReplaceAll([]KnowledgeBase{{ID: "kb1"}}, 1)
	c.Select("kb1")
	c.Documents = []Document{{ID: "d1"}}

	// The selected knowledge base was deleted server-side.
	c.ReplaceAll([]KnowledgeBase{{ID: "kb2"}}, 1)
	if c.SelectedID != "" {
		t.Errorf("SelectedID = %q, want cleared", c.SelectedID)
	}
	if c.Documents != nil {
		t.Error("document list must be cleared with the selection")
	}

	// A surviving selection is kept.
	c.Select("kb2")
	c.ReplaceAll([]KnowledgeBase{{ID: "kb2"}, {ID: "kb3"}}, 2)
	if c.SelectedID != "kb2" {
		t.Errorf("SelectedID = %q, want kb2 preserved", c.SelectedID)
	}
}
