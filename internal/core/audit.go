package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/celled/celled/internal/engine"
	"github.com/celled/celled/internal/export"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionFileOpen     AuditAction = "file_open"
	ActionFileSave     AuditAction = "file_save"
	ActionSessionClose AuditAction = "session_close"
	ActionCellEdit     AuditAction = "cell_edit"
	ActionPaste        AuditAction = "paste"
	ActionClearCells   AuditAction = "clear_cells"
	ActionRowInsert    AuditAction = "row_insert"
	ActionRowDelete    AuditAction = "row_delete"
	ActionRowDuplicate AuditAction = "row_duplicate"
	ActionRowMove      AuditAction = "row_move"
	ActionColumnInsert AuditAction = "column_insert"
	ActionColumnDelete AuditAction = "column_delete"
	ActionColumnRename AuditAction = "column_rename"
	ActionColumnMove   AuditAction = "column_move"
	ActionUndo         AuditAction = "undo"
	ActionRedo         AuditAction = "redo"
	ActionReplace      AuditAction = "replace"
	ActionReplaceAll   AuditAction = "replace_all"
	ActionSort         AuditAction = "sort"
	ActionCleanse      AuditAction = "cleanse"
	ActionScriptApply  AuditAction = "script_apply"
	ActionExport       AuditAction = "export"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// determineSeverity returns the appropriate severity for an action. Bulk or
// destructive changes rank high; reads of the trail itself are not audited.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionRowDelete, ActionColumnDelete, ActionReplaceAll, ActionCleanse, ActionScriptApply:
		return SeverityHigh
	case ActionFileOpen, ActionSessionClose, ActionExport, ActionUndo, ActionRedo:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID           string        `json:"id"`
	Action       AuditAction   `json:"action"`
	Severity     AuditSeverity `json:"severity"`
	Path         string        `json:"path,omitempty"`
	SessionID    string        `json:"sessionId,omitempty"`
	IPAddress    string        `json:"ipAddress,omitempty"`
	UserAgent    string        `json:"userAgent,omitempty"`
	Row          int           `json:"row,omitempty"`
	Col          int           `json:"col,omitempty"`
	ColumnName   string        `json:"columnName,omitempty"`
	OldValue     string        `json:"oldValue,omitempty"`
	NewValue     string        `json:"newValue,omitempty"`
	RowsAffected int           `json:"rowsAffected,omitempty"`
	Description  string        `json:"description,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// auditParams carries the fields of one trail entry from an operation to the
// writer. Severity, identity metadata and timestamps are filled in by audit.
type auditParams struct {
	Action       AuditAction
	Path         string
	SessionID    string
	Row          int
	Col          int
	ColumnName   string
	OldValue     string
	NewValue     string
	RowsAffected int
	Description  string
}

// DefaultAuditLimit caps audit queries that arrive without a page size.
const DefaultAuditLimit = 50

// auditExportLimit caps how many entries a CSV export pulls.
const auditExportLimit = 10000

// errAuditDisabled reports audit queries against a service with no database.
var errAuditDisabled = errors.New("audit trail is disabled: no database configured")

const auditColumns = `id, action, severity, file_path, session_id, ip_address, user_agent,
	row_index, col_index, column_name, old_value, new_value, rows_affected,
	description, created_at`

const insertAuditSQL = `INSERT INTO audit_log (
	id, action, severity, file_path, session_id, ip_address, user_agent,
	row_index, col_index, column_name, old_value, new_value, rows_affected, description
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

// audit writes one best-effort trail entry. With a nil pool auditing is
// disabled and the entry is dropped; write failures are logged and never
// propagate into the operation that triggered them.
func (s *Service) audit(ctx context.Context, params auditParams) {
	if s.pool == nil {
		slog.Debug("audit disabled, dropping entry", "action", params.Action)
		return
	}

	// The web layer stores a bare address, but tolerate host:port from other
	// callers.
	var addr *netip.Addr
	if ip := IPAddressFromContext(ctx); ip != "" {
		host := ip
		if h, _, err := net.SplitHostPort(ip); err == nil {
			host = h
		}
		if a, err := netip.ParseAddr(host); err == nil {
			addr = &a
		}
	}

	_, err := s.pool.Exec(ctx, insertAuditSQL,
		toPgUUID(uuid.New().String()),
		string(params.Action),
		string(determineSeverity(params.Action)),
		toPgText(params.Path),
		toPgText(params.SessionID),
		addr,
		toPgText(UserAgentFromContext(ctx)),
		toPgInt4(params.Row),
		toPgInt4(params.Col),
		toPgText(params.ColumnName),
		toPgText(params.OldValue),
		toPgText(params.NewValue),
		toPgInt4(params.RowsAffected),
		toPgText(params.Description),
	)
	if err != nil {
		slog.Warn("audit write failed", "action", params.Action, "error", err)
	}
}

// schemaDDL bootstraps the audit tables. Every statement is idempotent, so it
// runs unconditionally at startup whenever a pool is configured.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS audit_log (
    id UUID PRIMARY KEY,
    action TEXT NOT NULL,
    severity TEXT NOT NULL,
    file_path TEXT,
    session_id TEXT,
    ip_address INET,
    user_agent TEXT,
    row_index INTEGER,
    col_index INTEGER,
    column_name TEXT,
    old_value TEXT,
    new_value TEXT,
    rows_affected INTEGER,
    description TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON audit_log (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_audit_log_file_path ON audit_log (file_path);
CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log (action);

CREATE TABLE IF NOT EXISTS audit_log_archive (
    id UUID PRIMARY KEY,
    action TEXT NOT NULL,
    severity TEXT NOT NULL,
    file_path TEXT,
    session_id TEXT,
    ip_address INET,
    user_agent TEXT,
    row_index INTEGER,
    col_index INTEGER,
    column_name TEXT,
    old_value TEXT,
    new_value TEXT,
    rows_affected INTEGER,
    description TEXT,
    created_at TIMESTAMPTZ NOT NULL,
    archived_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_audit_log_archive_created_at ON audit_log_archive (created_at DESC);
`

// EnsureSchema creates the audit tables and indexes if they do not exist.
// With a nil pool it is a no-op.
func (s *Service) EnsureSchema(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// AuditFilter contains filtering options for querying the audit trail.
type AuditFilter struct {
	Path      string
	SessionID string
	Action    AuditAction
	Severity  string
	StartTime time.Time
	EndTime   time.Time
	Limit     int
	Offset    int
}

// where renders the filter as a WHERE clause plus arguments. The time range
// is always applied, defaulting to an effectively unbounded window.
func (f AuditFilter) where() (string, []any, int) {
	wb := NewWhereBuilder()
	wb.Add("action", string(f.Action))
	wb.Add("severity", f.Severity)
	wb.Add("file_path", f.Path)
	wb.Add("session_id", f.SessionID)

	start := f.StartTime
	if start.IsZero() {
		start = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	end := f.EndTime
	if end.IsZero() {
		end = time.Now().Add(24 * time.Hour)
	}
	wb.AddTimestampRange("created_at", start, end)

	clause, args := wb.Build()
	return clause, args, wb.NextArgIndex()
}

// AuditPage is one page of audit entries with pagination totals.
type AuditPage struct {
	Entries    []AuditEntry `json:"entries"`
	TotalCount int64        `json:"totalCount"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	TotalPages int          `json:"totalPages"`
}

// AuditList retrieves audit entries newest first, with optional filtering.
func (s *Service) AuditList(ctx context.Context, filter AuditFilter) (*AuditPage, error) {
	return s.auditList(ctx, "audit_log", filter)
}

// AuditArchiveList retrieves archived audit entries newest first.
func (s *Service) AuditArchiveList(ctx context.Context, filter AuditFilter) (*AuditPage, error) {
	return s.auditList(ctx, "audit_log_archive", filter)
}

func (s *Service) auditList(ctx context.Context, table string, filter AuditFilter) (*AuditPage, error) {
	if s.pool == nil {
		return nil, errAuditDisabled
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultAuditLimit
	}

	whereClause, args, next := filter.where()

	var total int64
	countQuery := "SELECT COUNT(*) FROM " + table + whereClause
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := "SELECT " + auditColumns + " FROM " + table + whereClause +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", next, next+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]AuditEntry, 0)
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := (filter.Offset / filter.Limit) + 1
	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	if totalPages < 1 {
		totalPages = 1
	}

	return &AuditPage{
		Entries:    entries,
		TotalCount: total,
		Page:       page,
		PageSize:   filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// AuditByID retrieves a single audit entry.
func (s *Service) AuditByID(ctx context.Context, id string) (*AuditEntry, error) {
	if s.pool == nil {
		return nil, errAuditDisabled
	}

	row := s.pool.QueryRow(ctx, "SELECT "+auditColumns+" FROM audit_log WHERE id = $1", toPgUUID(id))
	entry, err := scanAuditEntry(row)
	if err != nil {
		return nil, fmt.Errorf("audit entry %s: %w", id, err)
	}
	return entry, nil
}

// AuditCount returns the number of entries matching the filter.
func (s *Service) AuditCount(ctx context.Context, filter AuditFilter) (int64, error) {
	if s.pool == nil {
		return 0, errAuditDisabled
	}

	whereClause, args, _ := filter.where()

	var count int64
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_log"+whereClause, args...).Scan(&count)
	return count, err
}

// AuditExportCSV renders matching entries as CSV through the exporter, so the
// trail downloads in the same shape as grid exports.
func (s *Service) AuditExportCSV(ctx context.Context, filter AuditFilter) ([]byte, error) {
	filter.Limit = auditExportLimit
	filter.Offset = 0

	page, err := s.AuditList(ctx, filter)
	if err != nil {
		return nil, err
	}

	headers := []string{
		"ID", "Timestamp", "Action", "Severity", "Path", "Session",
		"IP Address", "Row", "Col", "Column", "Old Value", "New Value",
		"Rows Affected", "Description",
	}
	rows := make([][]string, 0, len(page.Entries))
	for _, e := range page.Entries {
		rows = append(rows, []string{
			e.ID,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			string(e.Action),
			string(e.Severity),
			e.Path,
			e.SessionID,
			e.IPAddress,
			strconv.Itoa(e.Row),
			strconv.Itoa(e.Col),
			e.ColumnName,
			e.OldValue,
			e.NewValue,
			strconv.Itoa(e.RowsAffected),
			e.Description,
		})
	}

	f, ok := export.Get("csv")
	if !ok {
		return nil, fmt.Errorf("%w: %q", export.ErrUnknownFormat, "csv")
	}
	var buf bytes.Buffer
	opts := export.Options{Format: "csv", IncludeHeaders: true}
	if err := f.Render(&buf, engine.NewGrid(headers, rows), opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// archiveBatchSQL moves one batch of expired entries into the archive. The
// CTE deletes and inserts in a single statement, so a crash between the two
// halves cannot lose entries.
const archiveBatchSQL = `
WITH moved AS (
    DELETE FROM audit_log
    WHERE id IN (
        SELECT id FROM audit_log
        WHERE created_at < now() - make_interval(days => $1)
        ORDER BY created_at
        LIMIT $2
    )
    RETURNING id, action, severity, file_path, session_id, ip_address, user_agent,
        row_index, col_index, column_name, old_value, new_value, rows_affected,
        description, created_at
)
INSERT INTO audit_log_archive (
    id, action, severity, file_path, session_id, ip_address, user_agent,
    row_index, col_index, column_name, old_value, new_value, rows_affected,
    description, created_at
)
SELECT * FROM moved`

// ArchiveOldEntries moves entries older than retentionDays into the archive
// table, batching so a large backlog never holds one long transaction.
// It returns the number of entries moved.
func (s *Service) ArchiveOldEntries(ctx context.Context, retentionDays, batchSize int) (int64, error) {
	if s.pool == nil {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 5000
	}

	var moved int64
	for {
		tag, err := s.pool.Exec(ctx, archiveBatchSQL, retentionDays, batchSize)
		if err != nil {
			return moved, err
		}
		n := tag.RowsAffected()
		moved += n
		if n < int64(batchSize) {
			return moved, nil
		}
	}
}

// purgeOldArchives permanently deletes archived entries older than
// yearsToKeep.
func (s *Service) purgeOldArchives(ctx context.Context, yearsToKeep int) (int64, error) {
	if s.pool == nil {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM audit_log_archive WHERE created_at < now() - make_interval(years => $1)", yearsToKeep)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Helper functions for pg type conversion. Zero values map to NULL.

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgInt4(i int) pgtype.Int4 {
	if i == 0 {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(i), Valid: true}
}

func toPgUUID(s string) pgtype.UUID {
	if s == "" {
		return pgtype.UUID{Valid: false}
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// scanAuditEntry reads one audit row. The column order matches auditColumns.
func scanAuditEntry(row pgx.Row) (*AuditEntry, error) {
	var (
		id           pgtype.UUID
		action       string
		severity     string
		filePath     pgtype.Text
		sessionID    pgtype.Text
		ipAddress    *netip.Addr
		userAgent    pgtype.Text
		rowIndex     pgtype.Int4
		colIndex     pgtype.Int4
		columnName   pgtype.Text
		oldValue     pgtype.Text
		newValue     pgtype.Text
		rowsAffected pgtype.Int4
		description  pgtype.Text
		createdAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&id, &action, &severity, &filePath, &sessionID, &ipAddress, &userAgent,
		&rowIndex, &colIndex, &columnName, &oldValue, &newValue, &rowsAffected,
		&description, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	entry := &AuditEntry{
		ID:        uuidToString(id),
		Action:    AuditAction(action),
		Severity:  AuditSeverity(severity),
		CreatedAt: createdAt.Time,
	}
	if filePath.Valid {
		entry.Path = filePath.String
	}
	if sessionID.Valid {
		entry.SessionID = sessionID.String
	}
	if ipAddress != nil {
		entry.IPAddress = ipAddress.String()
	}
	if userAgent.Valid {
		entry.UserAgent = userAgent.String
	}
	if rowIndex.Valid {
		entry.Row = int(rowIndex.Int32)
	}
	if colIndex.Valid {
		entry.Col = int(colIndex.Int32)
	}
	if columnName.Valid {
		entry.ColumnName = columnName.String
	}
	if oldValue.Valid {
		entry.OldValue = oldValue.String
	}
	if newValue.Valid {
		entry.NewValue = newValue.String
	}
	if rowsAffected.Valid {
		entry.RowsAffected = int(rowsAffected.Int32)
	}
	if description.Valid {
		entry.Description = description.String
	}
	return entry, nil
}
