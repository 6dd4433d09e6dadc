// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragdesk/internal/api"
	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/ui/styles"
	"github.com/jeranaias/ragdesk/internal/util"
)

// requestTimeout bounds each catalog call issued from the pane.
const requestTimeout = 15 * time.Second

const listPageSize = 50

// =============================================================================
// MESSAGES
// =============================================================================

// ListLoadedMsg carries a refreshed knowledge base collection.
type ListLoadedMsg struct {
	KBs   []model.KnowledgeBase
	Total int
	Err   error
}

// DocsLoadedMsg carries the document list of the selected knowledge base.
type DocsLoadedMsg struct {
	KBID string
	Docs []model.Document
	Err  error
}

// MutationDoneMsg reports a create or delete call.
type MutationDoneMsg struct {
	Action string // "create" | "delete" | "delete-docs"
	Name   string
	Err    error
}

// SelectionChangedMsg tells the app which knowledge base is active.
type SelectionChangedMsg struct {
	ID   string
	Name string
}

// =============================================================================
// PANE MODES
// =============================================================================

type mode int

const (
	modeBrowse mode = iota
	modeCreate
	modeConfirmDelete
	modeConfirmDeleteDoc
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the knowledge base pane.
type Model struct {
	client  *api.Client
	catalog *model.Catalog

	kbTable  table.Model
	docTable table.Model
	nameIn   textinput.Model

	mode      mode
	deleteID  string
	delName   string
	focusDocs bool

	// defaultRef is the configured startup knowledge base (id or name),
	// consumed on the first successful list load.
	defaultRef string

	width  int
	height int

	loading bool
	status  string
}

// New creates the pane. Call Refresh from the app's Init. defaultKB
// preselects a knowledge base by id or name once the first list arrives.
func New(client *api.Client, catalog *model.Catalog, defaultKB string) Model {
	kbCols := []table.Column{
		{Title: "Name", Width: 28},
		{Title: "Docs", Width: 6},
		{Title: "Chunks", Width: 8},
		{Title: "Status", Width: 10},
	}
	kt := table.New(
		table.WithColumns(kbCols),
		table.WithFocused(true),
		table.WithHeight(8),
	)

	docCols := []table.Column{
		{Title: "Document", Width: 34},
		{Title: "Size", Width: 10},
		{Title: "Status", Width: 12},
		{Title: "Chunks", Width: 8},
	}
	dt := table.New(
		table.WithColumns(docCols),
		table.WithHeight(8),
	)

	ti := textinput.New()
	ti.Prompt = "Name: "
	ti.CharLimit = 128

	applyTableStyles(&kt)
	applyTableStyles(&dt)

	return Model{
		client:     client,
		catalog:    catalog,
		kbTable:    kt,
		docTable:   dt,
		nameIn:     ti,
		defaultRef: defaultKB,
	}
}

func applyTableStyles(t *table.Model) {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Overlay).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.TextSecondary)
	s.Selected = s.Selected.
		Foreground(styles.TextInverse).
		Background(styles.Purple).
		Bold(false)
	t.SetStyles(s)
}

// Init is a no-op; the app triggers the first Refresh.
func (m Model) Init() tea.Cmd { return nil }

// SetSize updates the pane dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	half := (height - 8) / 2
	if half < 4 {
		half = 4
	}
	m.kbTable.SetHeight(half)
	m.docTable.SetHeight(half)
}

// Refresh returns a command that reloads the knowledge base list.
func (m *Model) Refresh() tea.Cmd {
	m.loading = true
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := client.ListDatasets(ctx, 1, listPageSize)
		if err != nil {
			return ListLoadedMsg{Err: err}
		}
		kbs := make([]model.KnowledgeBase, 0, len(resp.Data))
		for _, d := range resp.Data {
			kbs = append(kbs, model.KnowledgeBaseFromDataset(d))
		}
		return ListLoadedMsg{KBs: kbs, Total: resp.Total}
	}
}

func (m *Model) loadDocs(kbID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := client.ListDocuments(ctx, kbID, 1, listPageSize, "")
		if err != nil {
			return DocsLoadedMsg{KBID: kbID, Err: err}
		}
		docs := make([]model.Document, 0, len(resp.Data))
		for _, d := range resp.Data {
			docs = append(docs, model.DocumentFromAPI(d))
		}
		return DocsLoadedMsg{KBID: kbID, Docs: docs}
	}
}

func (m *Model) createKB(name string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		_, err := client.CreateDataset(ctx, name, "")
		return MutationDoneMsg{Action: "create", Name: name, Err: err}
	}
}

func (m *Model) deleteKB(id, name string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := client.DeleteDataset(ctx, id)
		return MutationDoneMsg{Action: "delete", Name: name, Err: err}
	}
}

func (m *Model) deleteDocs(kbID string, ids []string, name string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		_, err := client.DeleteDocuments(ctx, kbID, ids)
		return MutationDoneMsg{Action: "delete-docs", Name: name, Err: err}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeCreate:
			return m.updateCreate(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		case modeConfirmDeleteDoc:
			return m.updateConfirmDoc(msg)
		default:
			return m.updateBrowse(msg)
		}

	case ListLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.status = "List failed: " + msg.Err.Error()
			return m, nil
		}
		m.catalog.ReplaceAll(msg.KBs, msg.Total)
		m.syncKBRows()
		m.status = fmt.Sprintf("%d knowledge bases", msg.Total)
		// The configured default applies once, on the first load.
		if ref := m.defaultRef; ref != "" {
			m.defaultRef = ""
			if m.catalog.SelectedID == "" {
				if kb := m.findKB(ref); kb != nil {
					m.catalog.Select(kb.ID)
					m.syncDocRows()
					return m, tea.Batch(m.loadDocs(kb.ID), announceSelection(kb.ID, kb.Name))
				}
				m.status = fmt.Sprintf("Default knowledge base %q not found", ref)
			}
		}
		// Selection may have been cleared if the KB vanished server-side.
		if m.catalog.SelectedID == "" {
			m.syncDocRows()
			return m, announceSelection("", "")
		}
		return m, nil

	case DocsLoadedMsg:
		if msg.Err != nil {
			m.status = "Documents failed: " + msg.Err.Error()
			return m, nil
		}
		if msg.KBID == m.catalog.SelectedID {
			m.catalog.Documents = msg.Docs
			m.syncDocRows()
		}
		return m, nil

	case MutationDoneMsg:
		if msg.Err != nil {
			m.status = msg.Action + " failed: " + msg.Err.Error()
			return m, nil
		}
		switch msg.Action {
		case "create":
			m.status = "Created " + msg.Name
		case "delete":
			m.status = "Deleted " + msg.Name
		case "delete-docs":
			m.status = "Removed " + msg.Name
			// Chunk counts change too, so the list reloads as well.
			return m, tea.Batch(m.Refresh(), m.loadDocs(m.catalog.SelectedID))
		}
		return m, m.Refresh()
	}

	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		return m, m.Refresh()
	case "n":
		m.mode = modeCreate
		m.nameIn.Reset()
		m.nameIn.Focus()
		return m, textinput.Blink
	case "d":
		if m.focusDocs {
			if doc := m.highlightedDoc(); doc != nil {
				m.mode = modeConfirmDeleteDoc
				m.deleteID = doc.ID
				m.delName = doc.Name
			}
			return m, nil
		}
		if kb := m.highlightedKB(); kb != nil {
			m.mode = modeConfirmDelete
			m.deleteID = kb.ID
			m.delName = kb.Name
		}
		return m, nil
	case "left", "right":
		m.focusDocs = !m.focusDocs
		if m.focusDocs {
			m.kbTable.Blur()
			m.docTable.Focus()
		} else {
			m.docTable.Blur()
			m.kbTable.Focus()
		}
		return m, nil
	case "enter":
		if m.focusDocs {
			return m, nil
		}
		kb := m.highlightedKB()
		if kb == nil {
			return m, nil
		}
		m.catalog.Select(kb.ID)
		m.syncDocRows()
		return m, tea.Batch(m.loadDocs(kb.ID), announceSelection(kb.ID, kb.Name))
	case "esc":
		if m.catalog.SelectedID != "" {
			m.catalog.ClearSelection()
			m.syncDocRows()
			return m, announceSelection("", "")
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focusDocs {
		m.docTable, cmd = m.docTable.Update(msg)
	} else {
		m.kbTable, cmd = m.kbTable.Update(msg)
	}
	return m, cmd
}

func (m Model) updateCreate(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(m.nameIn.Value())
		m.mode = modeBrowse
		m.nameIn.Blur()
		if name == "" {
			m.status = "Name required"
			return m, nil
		}
		return m, m.createKB(name)
	case "esc":
		m.mode = modeBrowse
		m.nameIn.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.nameIn, cmd = m.nameIn.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id, name := m.deleteID, m.delName
		m.mode = modeBrowse
		m.deleteID = ""
		var cmds []tea.Cmd
		// Deleting the selected KB clears the selection immediately.
		if id == m.catalog.SelectedID {
			m.catalog.ClearSelection()
			m.syncDocRows()
			cmds = append(cmds, announceSelection("", ""))
		}
		cmds = append(cmds, m.deleteKB(id, name))
		return m, tea.Batch(cmds...)
	case "n", "N", "esc":
		m.mode = modeBrowse
		m.deleteID = ""
		return m, nil
	}
	return m, nil
}

func (m Model) updateConfirmDoc(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id, name := m.deleteID, m.delName
		kbID := m.catalog.SelectedID
		m.mode = modeBrowse
		m.deleteID = ""
		if kbID == "" {
			return m, nil
		}
		return m, m.deleteDocs(kbID, []string{id}, name)
	case "n", "N", "esc":
		m.mode = modeBrowse
		m.deleteID = ""
		return m, nil
	}
	return m, nil
}

func announceSelection(id, name string) tea.Cmd {
	return func() tea.Msg { return SelectionChangedMsg{ID: id, Name: name} }
}

func (m *Model) highlightedKB() *model.KnowledgeBase {
	idx := m.kbTable.Cursor()
	if idx < 0 || idx >= len(m.catalog.KnowledgeBases) {
		return nil
	}
	return &m.catalog.KnowledgeBases[idx]
}

func (m *Model) highlightedDoc() *model.Document {
	idx := m.docTable.Cursor()
	if idx < 0 || idx >= len(m.catalog.Documents) {
		return nil
	}
	return &m.catalog.Documents[idx]
}

// findKB matches a configured reference by id first, then by name.
func (m *Model) findKB(ref string) *model.KnowledgeBase {
	for i := range m.catalog.KnowledgeBases {
		if m.catalog.KnowledgeBases[i].ID == ref {
			return &m.catalog.KnowledgeBases[i]
		}
	}
	for i := range m.catalog.KnowledgeBases {
		if strings.EqualFold(m.catalog.KnowledgeBases[i].Name, ref) {
			return &m.catalog.KnowledgeBases[i]
		}
	}
	return nil
}

// =============================================================================
// ROW SYNC
// =============================================================================

func (m *Model) syncKBRows() {
	rows := make([]table.Row, 0, len(m.catalog.KnowledgeBases))
	for _, kb := range m.catalog.KnowledgeBases {
		rows = append(rows, table.Row{
			util.TruncateWidth(kb.Name, 28),
			fmt.Sprintf("%d", kb.DocumentCount),
			fmt.Sprintf("%d", kb.ChunkCount),
			kb.Status,
		})
	}
	m.kbTable.SetRows(rows)
}

func (m *Model) syncDocRows() {
	rows := make([]table.Row, 0, len(m.catalog.Documents))
	for _, d := range m.catalog.Documents {
		rows = append(rows, table.Row{
			util.TruncateWidth(d.Name, 34),
			d.Size,
			string(d.Status),
			fmt.Sprintf("%d", d.ChunkCount),
		})
	}
	m.docTable.SetRows(rows)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the pane.
func (m Model) View() string {
	title := styles.TitleStyle.Render("Knowledge Bases")

	var selected string
	if kb := m.catalog.Selected(); kb != nil {
		selected = styles.SuccessStyle.Render("Selected: " + kb.Name)
	} else {
		selected = styles.MutedStyle.Render("No knowledge base selected")
	}

	var footer string
	switch m.mode {
	case modeCreate:
		footer = m.nameIn.View() + "  " + styles.MutedStyle.Render("enter: create  esc: cancel")
	case modeConfirmDelete:
		footer = styles.WarningStyle.Render("Delete \""+m.delName+"\"? (y/n)") +
			styles.MutedStyle.Render("  Documents inside it are removed too.")
	case modeConfirmDeleteDoc:
		footer = styles.WarningStyle.Render("Remove document \"" + m.delName + "\"? (y/n)")
	default:
		footer = styles.MutedStyle.Render("enter: select  n: new  d: delete  r: refresh  ←/→: docs  esc: deselect")
	}

	status := styles.MutedStyle.Render(m.status)
	if m.loading {
		status = styles.MutedStyle.Render("Loading...")
	}

	docTitle := styles.LabelStyle.Render("Documents")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		selected,
		"",
		m.kbTable.View(),
		"",
		docTitle,
		m.docTable.View(),
		"",
		status,
		footer,
	)
}
