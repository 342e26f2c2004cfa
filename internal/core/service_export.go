package core

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/celled/celled/internal/export"
)

// Formats lists every registered export format for discovery.
func (s *Service) Formats() []export.FormatInfo {
	return export.All()
}

// ExportToFile renders the grid to a file on the server.
func (s *Service) ExportToFile(ctx context.Context, sessionID string, opts export.Options, path string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	if err := export.ExportFile(path, sess.editor.Grid(), opts); err != nil {
		return err
	}

	s.audit(ctx, auditParams{
		Action:       ActionExport,
		Path:         sess.Path,
		SessionID:    sess.ID,
		RowsAffected: sess.editor.Grid().RowCount(),
		Description:  fmt.Sprintf("Exported %s to %s", opts.Format, filepath.Base(path)),
	})
	return nil
}

// ExportBytes renders the grid in-memory and returns the payload with its
// format descriptor, so transports can set content type and filename.
func (s *Service) ExportBytes(sessionID string, opts export.Options) ([]byte, export.FormatInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, export.FormatInfo{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	f, ok := export.Get(opts.Format)
	if !ok {
		return nil, export.FormatInfo{}, fmt.Errorf("%w: %q", export.ErrUnknownFormat, opts.Format)
	}

	var buf bytes.Buffer
	if err := export.Export(&buf, sess.editor.Grid(), opts); err != nil {
		return nil, export.FormatInfo{}, err
	}
	return buf.Bytes(), f.Info, nil
}

// ExportPreview renders a truncated text preview. maxRows <= 0 falls back to
// the configured preview cap from settings.
func (s *Service) ExportPreview(sessionID string, opts export.Options, maxRows int) (string, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return "", err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	if maxRows <= 0 {
		maxRows = s.settings.Get().MaxPreviewRows
	}
	return export.Preview(sess.editor.Grid(), opts, maxRows)
}
