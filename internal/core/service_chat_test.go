package core

import (
	"context"
	"strings"
	"testing"

	"github.com/celled/celled/internal/chat"
	"github.com/celled/celled/internal/script"
	"github.com/celled/celled/internal/settings"
)

// ============================================================================
// Chat Transcript Tests
// ============================================================================

func TestChatHistory_EmptyForNewSession(t *testing.T) {
	svc := newTestService(t)
	state := openSample(t, svc)

	hist, err := svc.ChatHistory(state.SessionID)
	if err != nil {
		t.Fatalf("ChatHistory failed: %v", err)
	}
	if len(hist.Messages) != 0 {
		t.Errorf("expected empty transcript, got %d messages", len(hist.Messages))
	}
}

func TestAppendChat(t *testing.T) {
	svc := newTestService(t)
	state := openSample(t, svc)

	hist, err := svc.AppendChat(state.SessionID, chat.NewMessage(chat.RoleUser, "make the ages bigger"))
	if err != nil {
		t.Fatalf("AppendChat failed: %v", err)
	}
	if len(hist.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(hist.Messages))
	}

	reply := chat.NewMessage(chat.RoleAssistant, "here is a script")
	reply.Script = &script.Script{ID: "s1", Content: "1;", Type: script.TypeTransformation}
	hist, err = svc.AppendChat(state.SessionID, reply)
	if err != nil {
		t.Fatalf("AppendChat failed: %v", err)
	}
	if len(hist.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(hist.Messages))
	}
	if got := hist.LatestScript(); got == nil || got.ID != "s1" {
		t.Errorf("expected latest script s1, got %+v", got)
	}
}

func TestChat_SharedByPath(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	path := writeTestCSV(t, sampleCSV)

	first, err := svc.OpenFile(ctx, path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if _, err := svc.AppendChat(first.SessionID, chat.NewMessage(chat.RoleUser, "hello")); err != nil {
		t.Fatalf("AppendChat failed: %v", err)
	}
	if err := svc.CloseSession(ctx, first.SessionID, true); err != nil {
		t.Fatalf("CloseSession failed: %v", err)
	}

	// Reopening the same file brings the transcript back.
	second, err := svc.OpenFile(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	hist, err := svc.ChatHistory(second.SessionID)
	if err != nil {
		t.Fatalf("ChatHistory failed: %v", err)
	}
	if len(hist.Messages) != 1 || hist.Messages[0].Content != "hello" {
		t.Errorf("expected the transcript to survive reopen, got %+v", hist.Messages)
	}
}

func TestChat_BlankSessionsArePrivate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a, err := svc.NewBlank(ctx, nil, nil)
	if err != nil {
		t.Fatalf("NewBlank failed: %v", err)
	}
	b, err := svc.NewBlank(ctx, nil, nil)
	if err != nil {
		t.Fatalf("NewBlank failed: %v", err)
	}

	if _, err := svc.AppendChat(a.SessionID, chat.NewMessage(chat.RoleUser, "only for a")); err != nil {
		t.Fatalf("AppendChat failed: %v", err)
	}
	hist, err := svc.ChatHistory(b.SessionID)
	if err != nil {
		t.Fatalf("ChatHistory failed: %v", err)
	}
	if len(hist.Messages) != 0 {
		t.Errorf("expected b's transcript empty, got %d messages", len(hist.Messages))
	}
}

func TestClearChat(t *testing.T) {
	svc := newTestService(t)
	state := openSample(t, svc)

	if _, err := svc.AppendChat(state.SessionID, chat.NewMessage(chat.RoleUser, "hi")); err != nil {
		t.Fatalf("AppendChat failed: %v", err)
	}
	if err := svc.ClearChat(state.SessionID); err != nil {
		t.Fatalf("ClearChat failed: %v", err)
	}

	hist, err := svc.ChatHistory(state.SessionID)
	if err != nil {
		t.Fatalf("ChatHistory failed: %v", err)
	}
	if len(hist.Messages) != 0 {
		t.Errorf("expected cleared transcript, got %d messages", len(hist.Messages))
	}
}

// ============================================================================
// Settings Tests
// ============================================================================

func TestSettingsRoundTrip(t *testing.T) {
	svc := newTestService(t)

	prefs := svc.GetSettings()
	if prefs.DefaultDelimiter != "," || prefs.MaxPreviewRows != 100 {
		t.Fatalf("expected defaults, got %+v", prefs)
	}

	prefs.TrimWhitespace = true
	prefs.MaxPreviewRows = 25
	if err := svc.UpdateSettings(prefs); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	got := svc.GetSettings()
	if !got.TrimWhitespace || got.MaxPreviewRows != 25 {
		t.Errorf("expected updated settings, got %+v", got)
	}

	reset, err := svc.ResetSettings()
	if err != nil {
		t.Fatalf("ResetSettings failed: %v", err)
	}
	if reset != settings.Defaults() {
		t.Errorf("expected defaults after reset, got %+v", reset)
	}
}

func TestUpdateSettings_Invalid(t *testing.T) {
	svc := newTestService(t)

	prefs := svc.GetSettings()
	prefs.DefaultDelimiter = "too long"
	err := svc.UpdateSettings(prefs)
	if err == nil || !strings.Contains(err.Error(), "defaultDelimiter") {
		t.Errorf("expected a validation error, got %v", err)
	}

	// The bad update must not stick.
	if got := svc.GetSettings(); got.DefaultDelimiter != "," {
		t.Errorf("expected delimiter unchanged, got %q", got.DefaultDelimiter)
	}
}

func TestImportPrefs_TrimAndSkip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	prefs := svc.GetSettings()
	prefs.TrimWhitespace = true
	prefs.SkipEmptyRows = true
	if err := svc.UpdateSettings(prefs); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	state, err := svc.OpenFile(ctx, writeTestCSV(t, "a,b\n x ,y\n,\nz,w\n"))
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if state.RowCount != 2 {
		t.Errorf("expected the empty row skipped, got %d rows", state.RowCount)
	}
	if got := getCell(t, svc, state.SessionID, 0, 0); got != "x" {
		t.Errorf("expected trimmed 'x', got %q", got)
	}
}
