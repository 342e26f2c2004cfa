package core

import (
	"github.com/celled/celled/internal/chat"
	"github.com/celled/celled/internal/settings"
)

// ChatHistory returns the session's conversation transcript. File-backed
// sessions share a transcript keyed by path, so reopening a file brings its
// chat back.
func (s *Service) ChatHistory(sessionID string) (chat.History, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return chat.History{}, err
	}

	sess.mu.Lock()
	key := sess.chatKey()
	sess.touch()
	sess.mu.Unlock()

	return s.chats.Load(key)
}

// AppendChat adds a message to the session's transcript and returns the
// updated history.
func (s *Service) AppendChat(sessionID string, msg chat.Message) (chat.History, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return chat.History{}, err
	}

	sess.mu.Lock()
	key := sess.chatKey()
	sess.touch()
	sess.mu.Unlock()

	return s.chats.Append(key, msg)
}

// ClearChat deletes the session's transcript.
func (s *Service) ClearChat(sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	key := sess.chatKey()
	sess.touch()
	sess.mu.Unlock()

	return s.chats.Clear(key)
}

// GetSettings returns the current import/export preferences.
func (s *Service) GetSettings() settings.ImportExport {
	return s.settings.Get()
}

// UpdateSettings validates and persists new preferences.
func (s *Service) UpdateSettings(prefs settings.ImportExport) error {
	return s.settings.Update(prefs)
}

// ResetSettings restores the preference defaults and returns them.
func (s *Service) ResetSettings() (settings.ImportExport, error) {
	return s.settings.Reset()
}
