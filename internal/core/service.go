package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/celled/celled/internal/chat"
	"github.com/celled/celled/internal/config"
	"github.com/celled/celled/internal/csvio"
	"github.com/celled/celled/internal/engine"
	"github.com/celled/celled/internal/gridsort"
	"github.com/celled/celled/internal/meta"
	"github.com/celled/celled/internal/script"
	"github.com/celled/celled/internal/settings"
)

// Service provides the core business logic for the grid editor.
type Service struct {
	cfg      *config.Config
	pool     *pgxpool.Pool // nil disables the audit trail
	executor *script.Executor
	settings *settings.Manager
	chats    *chat.Store
	meta     *meta.Manager

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Session is one open file bound to one editor. The editor is not safe for
// concurrent use; mu serializes all engine calls on this session.
type Session struct {
	ID   string
	Path string // empty until the first save of a blank session

	mu         sync.Mutex
	editor     *engine.Editor
	info       FileInfo
	sortState  *gridsort.State
	lastAccess time.Time
}

// touch must be called with the session lock held.
func (sess *Session) touch() {
	sess.lastAccess = time.Now()
}

// chatKey identifies this session's chat transcript. File-backed sessions
// share transcripts by path; blank sessions get a private one.
func (sess *Session) chatKey() string {
	if sess.Path != "" {
		return sess.Path
	}
	return "session:" + sess.ID
}

// NewService creates a new Service instance. pool may be nil, which disables
// the audit trail.
func NewService(cfg *config.Config, pool *pgxpool.Pool) (*Service, error) {
	sm, err := settings.NewManager(cfg.Editor.DataDir)
	if err != nil {
		return nil, fmt.Errorf("settings manager: %w", err)
	}
	cs, err := chat.NewStore(cfg.Editor.DataDir)
	if err != nil {
		return nil, fmt.Errorf("chat store: %w", err)
	}

	return &Service{
		cfg:      cfg,
		pool:     pool,
		executor: script.NewExecutor(cfg.Script.MaxConcurrent, cfg.Script.MaxWait, cfg.Script.Timeout),
		settings: sm,
		chats:    cs,
		meta:     meta.NewManager(),
		sessions: make(map[string]*Session),
	}, nil
}

// Executor exposes the script executor, mainly so shutdown can drain it.
func (s *Service) Executor() *script.Executor {
	return s.executor
}

// ValidateCSVPath checks that a path names an openable CSV/TSV file.
func (s *Service) ValidateCSVPath(path string) error {
	return csvio.ValidatePath(path)
}

// session looks up a live session by ID.
func (s *Service) session(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return sess, nil
}

// OpenFile reads a CSV/TSV file and registers a new session for it.
// The dialect is detected, import preferences from settings are applied,
// and any metadata sidecar's sort state is restored for display.
func (s *Service) OpenFile(ctx context.Context, path string) (*GridState, error) {
	if err := csvio.ValidatePath(path); err != nil {
		return nil, err
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.Size() > s.cfg.Editor.MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (limit %d)", fi.Size(), s.cfg.Editor.MaxFileSize)
	}

	prefs := s.settings.Get()

	res, err := csvio.ReadFile(path, csvio.ReadOptions{})
	if err != nil {
		return nil, err
	}
	headers, rows := applyImportPrefs(res.Headers, res.Rows, prefs)

	ed := engine.NewEditorWithHistoryLimit(engine.NewGrid(headers, rows), s.cfg.Editor.HistoryLimit)

	var sortState *gridsort.State
	if md, err := s.meta.Load(path); err == nil {
		sortState = md.SortState
	}

	sess := &Session{
		ID:   uuid.New().String(),
		Path: path,
		editor: ed,
		info: FileInfo{
			Path:          path,
			Filename:      filepath.Base(path),
			Delimiter:     string(res.Delimiter),
			Encoding:      res.Encoding,
			HasBOM:        res.HasBOM,
			FileSizeBytes: fi.Size(),
			LastModified:  fi.ModTime(),
		},
		sortState:  sortState,
		lastAccess: time.Now(),
	}

	if err := s.register(sess); err != nil {
		return nil, err
	}

	s.audit(ctx, auditParams{
		Action:       ActionFileOpen,
		Path:         path,
		SessionID:    sess.ID,
		RowsAffected: len(rows),
		Description:  fmt.Sprintf("Opened %s (%d rows)", sess.info.Filename, len(rows)),
	})

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.buildState(sess), nil
}

// Blank grid defaults when the caller provides nothing.
const (
	blankColumns = 3
	blankRows    = 10
)

// NewBlank registers a session over an in-memory grid with no backing file.
// Nil headers get auto names and nil rows become an empty block.
func (s *Service) NewBlank(ctx context.Context, headers []string, rows [][]string) (*GridState, error) {
	if len(headers) == 0 {
		headers = make([]string, blankColumns)
		for i := range headers {
			headers[i] = fmt.Sprintf("Column %d", i+1)
		}
	}
	if len(rows) == 0 {
		rows = make([][]string, blankRows)
		for i := range rows {
			rows[i] = make([]string, len(headers))
		}
	}

	sess := &Session{
		ID:     uuid.New().String(),
		editor: engine.NewEditorWithHistoryLimit(engine.NewGrid(headers, rows), s.cfg.Editor.HistoryLimit),
		info: FileInfo{
			Delimiter: ",",
			Encoding:  csvio.EncodingUTF8,
		},
		lastAccess: time.Now(),
	}

	if err := s.register(sess); err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.buildState(sess), nil
}

// register adds a session, enforcing the open-session cap.
func (s *Service) register(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.cfg.Editor.MaxSessions {
		return fmt.Errorf("too many open sessions (limit %d)", s.cfg.Editor.MaxSessions)
	}
	s.sessions[sess.ID] = sess
	return nil
}

// ListSessions returns a snapshot of all open sessions.
func (s *Service) ListSessions() []SessionInfo {
	s.mu.RLock()
	all := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(all))
	for _, sess := range all {
		sess.mu.Lock()
		g := sess.editor.Grid()
		infos = append(infos, SessionInfo{
			ID:          sess.ID,
			Path:        sess.Path,
			Filename:    sess.info.Filename,
			RowCount:    g.RowCount(),
			ColumnCount: g.ColumnCount(),
			Dirty:       sess.editor.Dirty(),
			LastAccess:  sess.lastAccess,
		})
		sess.mu.Unlock()
	}
	return infos
}

// SaveFile writes the session's grid back to disk. An empty path targets the
// session's own file; a non-empty path is a save-as and rebinds the session.
// The metadata sidecar is refreshed and the editor marked clean.
func (s *Service) SaveFile(ctx context.Context, sessionID, path string) (*SaveResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	target := path
	if target == "" {
		target = sess.Path
	}
	if target == "" {
		return nil, errors.New("no file path: session has no backing file, provide a save path")
	}

	prefs := s.settings.Get()
	g := sess.editor.Grid()

	delim := firstRune(sess.info.Delimiter)
	if delim == 0 {
		delim = firstRune(prefs.DefaultDelimiter)
	}
	if strings.EqualFold(filepath.Ext(target), ".tsv") {
		delim = '\t'
	}
	enc := sess.info.Encoding
	if enc == "" {
		enc = prefs.DefaultEncoding
	}

	err = csvio.WriteFile(target, g.Headers, g.Rows, csvio.WriteOptions{
		Delimiter: delim,
		Encoding:  enc,
		Backup:    prefs.BackupOnSave,
	})
	if err != nil {
		return nil, err
	}

	fi, statErr := os.Stat(target)

	md := &meta.FileMetadata{
		Filename:    filepath.Base(target),
		Path:        target,
		RowCount:    g.RowCount(),
		ColumnCount: g.ColumnCount(),
		HasHeaders:  true,
		Delimiter:   string(delim),
		Encoding:    enc,
		SortState:   sess.sortState,
	}
	if statErr == nil {
		md.FileSizeBytes = fi.Size()
		md.LastModified = fi.ModTime()
	}
	if err := s.meta.Save(target, md); err != nil {
		slog.Warn("sidecar save failed", "path", target, "error", err)
	}

	sess.editor.MarkSaved()
	sess.Path = target
	sess.info.Path = target
	sess.info.Filename = md.Filename
	sess.info.Delimiter = string(delim)
	sess.info.Encoding = enc
	sess.info.FileSizeBytes = md.FileSizeBytes
	sess.info.LastModified = md.LastModified

	s.audit(ctx, auditParams{
		Action:       ActionFileSave,
		Path:         target,
		SessionID:    sess.ID,
		RowsAffected: g.RowCount(),
		Description:  fmt.Sprintf("Saved %s (%d rows)", md.Filename, g.RowCount()),
	})

	return &SaveResult{Path: target, RowCount: g.RowCount(), File: sess.info}, nil
}

// CloseSession drops a session. Unsaved changes block the close unless
// force is set.
func (s *Service) CloseSession(ctx context.Context, sessionID string, force bool) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	dirty := sess.editor.Dirty()
	path := sess.Path
	sess.mu.Unlock()

	if dirty && !force {
		return fmt.Errorf("unsaved changes in session %s: save first or force close", sessionID)
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	s.audit(ctx, auditParams{
		Action:      ActionSessionClose,
		Path:        path,
		SessionID:   sessionID,
		Description: "Closed session",
	})
	return nil
}

// GetState returns the session snapshot without row data.
func (s *Service) GetState(sessionID string) (*GridState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()
	return s.buildState(sess), nil
}

// GetChunk returns rows [start, end). Bounds are clamped to the grid; an
// unset end pages one configured chunk forward.
func (s *Service) GetChunk(sessionID string, start, end int) (*Chunk, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	g := sess.editor.Grid()
	total := g.RowCount()

	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	if end <= start {
		end = start + s.cfg.Editor.ChunkSize
	}
	if end > total {
		end = total
	}

	rows := make([][]string, 0, end-start)
	for _, row := range g.Rows[start:end] {
		line := make([]string, len(row))
		copy(line, row)
		rows = append(rows, line)
	}

	return &Chunk{Start: start, End: end, Rows: rows, TotalRows: total}, nil
}

// GetMetadata returns the sidecar metadata for the session's file, freshened
// with live grid counts.
func (s *Service) GetMetadata(sessionID string) (*meta.FileMetadata, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	g := sess.editor.Grid()
	md := &meta.FileMetadata{Path: sess.Path}
	if sess.Path != "" {
		if loaded, err := s.meta.Load(sess.Path); err == nil {
			md = loaded
		}
	}
	md.Filename = sess.info.Filename
	md.RowCount = g.RowCount()
	md.ColumnCount = g.ColumnCount()
	md.HasHeaders = true
	md.Delimiter = sess.info.Delimiter
	md.Encoding = sess.info.Encoding
	md.FileSizeBytes = sess.info.FileSizeBytes
	md.LastModified = sess.info.LastModified
	md.SortState = sess.sortState
	return md, nil
}

// buildState assembles a GridState. The session lock must be held.
func (s *Service) buildState(sess *Session) *GridState {
	ed := sess.editor
	g := ed.Grid()

	headers := make([]string, len(g.Headers))
	copy(headers, g.Headers)

	return &GridState{
		SessionID:   sess.ID,
		File:        sess.info,
		Headers:     headers,
		RowCount:    g.RowCount(),
		ColumnCount: g.ColumnCount(),
		Dirty:       ed.Dirty(),
		CanUndo:     ed.CanUndo(),
		CanRedo:     ed.CanRedo(),
		Revision:    ed.Revision(),
		Selection:   selectionInfo(ed.Selection()),
		SortState:   sess.sortState,
		Search:      searchSummary(ed),
	}
}

// selectionInfo converts the engine selection to its wire form.
func selectionInfo(sel engine.Selection) *SelectionInfo {
	if sel == nil {
		return nil
	}
	top, left, bottom, right := sel.Bounds()

	kind := "cell"
	if r, ok := sel.(engine.Range); ok {
		switch r.Kind {
		case engine.RangeRows:
			kind = "row"
		case engine.RangeColumns:
			kind = "column"
		default:
			kind = "range"
		}
	}
	return &SelectionInfo{Kind: kind, StartRow: top, StartCol: left, EndRow: bottom, EndCol: right}
}

// searchSummary converts the active search to its wire form, nil when none.
func searchSummary(ed *engine.Editor) *SearchSummary {
	if !ed.SearchActive() {
		return nil
	}
	query, opts := ed.SearchQuery()
	return &SearchSummary{
		Active:     true,
		Query:      query,
		Options:    opts,
		MatchCount: len(ed.Matches()),
		Cursor:     ed.MatchCursor(),
		Current:    ed.CurrentMatch(),
	}
}

// applyImportPrefs applies settings-driven normalization to freshly read
// data: cell trimming and empty-row skipping.
func applyImportPrefs(headers []string, rows [][]string, prefs settings.ImportExport) ([]string, [][]string) {
	if prefs.TrimWhitespace {
		for i, h := range headers {
			headers[i] = strings.TrimSpace(h)
		}
		for _, row := range rows {
			for i, v := range row {
				row[i] = strings.TrimSpace(v)
			}
		}
	}
	if prefs.SkipEmptyRows {
		kept := rows[:0]
		for _, row := range rows {
			empty := true
			for _, v := range row {
				if v != "" {
					empty = false
					break
				}
			}
			if !empty {
				kept = append(kept, row)
			}
		}
		rows = kept
	}
	return headers, rows
}

// firstRune returns the first rune of s, or 0 for an empty string.
func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// sweepIdleSessions closes sessions idle past the cutoff. Dirty sessions are
// never reaped; unsaved work outlives the timeout.
func (s *Service) sweepIdleSessions(idleTimeout time.Duration) int {
	cutoff := time.Now().Add(-idleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	closed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastAccess.Before(cutoff)
		dirty := sess.editor.Dirty()
		sess.mu.Unlock()

		if idle && !dirty {
			delete(s.sessions, id)
			closed++
			slog.Debug("reaped idle session", "session_id", id, "path", sess.Path)
		}
	}
	return closed
}
