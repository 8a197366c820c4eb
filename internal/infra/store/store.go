// Package store provides durable, process-local persistence for chat
// sessions, notification preferences, and the per-chat notification
// cache. Each schema lives in its own JSON document under the data
// directory, keyed by chat id rendered as a string, and is rewritten
// atomically via a sibling temp file, fsync, and rename. Readers observe
// either the previous or the new contents, never a torn file.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"helpdesk-notify/internal/domain/entity"
)

const (
	sessionsFile    = "sessions.json"
	preferencesFile = "preferences.json"
	taskCacheFile   = "task_cache.json"
)

// Store owns the three persistent documents. It is safe for concurrent
// use; each document has its own lock so the engine and the janitor can
// overlap on different schemas.
type Store struct {
	dir string

	sessionsMu sync.Mutex
	prefsMu    sync.Mutex
	cacheMu    sync.Mutex
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// document reads a keyed JSON document. A missing file is an empty
// document.
func (s *Store) document(name string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	doc := map[string]json.RawMessage{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
	}
	return doc, nil
}

// writeDocument commits a document atomically: temp file in the same
// directory, fsync, rename over the live file.
func (s *Store) writeDocument(name string, doc map[string]json.RawMessage) error {
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open temp for %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp for %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp for %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp for %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// AllSessions returns every authenticated session keyed by chat id.
func (s *Store) AllSessions() (map[int64]entity.Session, error) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	doc, err := s.document(sessionsFile)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]entity.Session, len(doc))
	for key, raw := range doc {
		chatID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		var sess entity.Session
		if err := json.Unmarshal(raw, &sess); err != nil {
			return nil, fmt.Errorf("decode session %s: %w", key, err)
		}
		out[chatID] = sess
	}
	return out, nil
}

// Session returns the session for a chat, or nil if the chat is not
// authenticated.
func (s *Store) Session(chatID int64) (*entity.Session, error) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	doc, err := s.document(sessionsFile)
	if err != nil {
		return nil, err
	}
	raw, ok := doc[chatKey(chatID)]
	if !ok {
		return nil, nil
	}
	var sess entity.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session %d: %w", chatID, err)
	}
	return &sess, nil
}

// PutSession stores the session for a chat.
func (s *Store) PutSession(chatID int64, sess entity.Session) error {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	return s.putKey(sessionsFile, chatKey(chatID), sess)
}

// DeleteSession removes the session for a chat. Missing keys are a no-op.
func (s *Store) DeleteSession(chatID int64) error {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	return s.deleteKey(sessionsFile, chatKey(chatID))
}

// Preferences returns the notification preferences for a chat. A chat
// without a stored record gets the all-enabled defaults.
func (s *Store) Preferences(chatID int64) (entity.Preferences, error) {
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()

	doc, err := s.document(preferencesFile)
	if err != nil {
		return entity.DefaultPreferences(), err
	}
	raw, ok := doc[chatKey(chatID)]
	if !ok {
		return entity.DefaultPreferences(), nil
	}
	var prefs entity.Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return entity.DefaultPreferences(), fmt.Errorf("decode preferences %d: %w", chatID, err)
	}
	return prefs, nil
}

// PutPreferences stores the preferences for a chat.
func (s *Store) PutPreferences(chatID int64, prefs entity.Preferences) error {
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	return s.putKey(preferencesFile, chatKey(chatID), prefs)
}

// DeletePreferences removes the preference record for a chat.
func (s *Store) DeletePreferences(chatID int64) error {
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	return s.deleteKey(preferencesFile, chatKey(chatID))
}

// Cache returns the notification cache for a chat. A chat without a
// stored record gets an empty cache with initialized=false.
func (s *Store) Cache(chatID int64) (*entity.NotificationCache, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	doc, err := s.document(taskCacheFile)
	if err != nil {
		return nil, err
	}
	raw, ok := doc[chatKey(chatID)]
	if !ok {
		return entity.NewNotificationCache(), nil
	}
	var cache entity.NotificationCache
	if err := json.Unmarshal(raw, &cache); err != nil {
		return nil, fmt.Errorf("decode cache %d: %w", chatID, err)
	}
	cache.Normalize()
	return &cache, nil
}

// PutCache stores the post-cycle cache for a chat. The write is atomic
// at whole-document granularity. Fields of the prior record that this
// build does not know are carried over untouched, so a cache written by
// a newer build survives a round trip through an older one.
func (s *Store) PutCache(chatID int64, cache *entity.NotificationCache) error {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	doc, err := s.document(taskCacheFile)
	if err != nil {
		return err
	}
	key := chatKey(chatID)
	raw, err := mergeRecord(doc[key], cache)
	if err != nil {
		return fmt.Errorf("encode cache %d: %w", chatID, err)
	}
	doc[key] = raw
	return s.writeDocument(taskCacheFile, doc)
}

// DeleteCache removes the cache record for a chat.
func (s *Store) DeleteCache(chatID int64) error {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.deleteKey(taskCacheFile, chatKey(chatID))
}

// PreferenceChatIDs returns the chat ids that have a preference record.
func (s *Store) PreferenceChatIDs() ([]int64, error) {
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()
	return s.chatIDs(preferencesFile)
}

// CacheChatIDs returns the chat ids that have a cache record.
func (s *Store) CacheChatIDs() ([]int64, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.chatIDs(taskCacheFile)
}

func (s *Store) chatIDs(name string) ([]int64, error) {
	doc, err := s.document(name)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(doc))
	for key := range doc {
		if id, err := strconv.ParseInt(key, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) putKey(name, key string, value any) error {
	doc, err := s.document(name)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", name, err)
	}
	doc[key] = raw
	return s.writeDocument(name, doc)
}

func (s *Store) deleteKey(name, key string) error {
	doc, err := s.document(name)
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return s.writeDocument(name, doc)
}

// mergeRecord marshals next over prev, keeping top-level keys of prev
// that next does not produce.
func mergeRecord(prev json.RawMessage, next any) (json.RawMessage, error) {
	nextRaw, err := json.Marshal(next)
	if err != nil {
		return nil, err
	}
	if len(prev) == 0 {
		return nextRaw, nil
	}
	var base map[string]json.RawMessage
	if err := json.Unmarshal(prev, &base); err != nil {
		// Prior record is not an object; replace it outright.
		return nextRaw, nil
	}
	var overlay map[string]json.RawMessage
	if err := json.Unmarshal(nextRaw, &overlay); err != nil {
		return nextRaw, nil
	}
	for k, v := range overlay {
		base[k] = v
	}
	return json.Marshal(base)
}
