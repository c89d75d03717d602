package navigation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// sessionVersion is bumped whenever the blob layout changes incompatibly.
const sessionVersion = 1

const pageKeyPrefix = "Page"

// PageKeyFor returns the state key of the entry at stack index i.
func PageKeyFor(index int) string {
	return pageKeyPrefix + strconv.Itoa(index)
}

// pageKeyIndex parses a key produced by PageKeyFor.
func pageKeyIndex(key string) (int, bool) {
	if !strings.HasPrefix(key, pageKeyPrefix) {
		return 0, false
	}
	i, err := strconv.Atoi(key[len(pageKeyPrefix):])
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// SessionStore holds the saved state of each page, keyed by stack depth, and
// produces the session blob. One store belongs to one coordinator.
type SessionStore struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		states: make(map[string]State),
	}
}

// Save stores state under key, replacing any previous value.
func (s *SessionStore) Save(key string, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[key] = state
}

// Load returns the state saved under key.
func (s *SessionStore) Load(key string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[key]
	return state, ok
}

// Len returns the number of saved states.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

// PurgeFrom drops the state of every depth >= index, so history discarded
// by a forward-branch truncation never resurfaces under a reused key.
func (s *SessionStore) PurgeFrom(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A page that saved nothing leaves a gap, so walk every key rather than
	// stopping at the first missing depth.
	for key := range s.states {
		if i, ok := pageKeyIndex(key); ok && i >= index {
			delete(s.states, key)
		}
	}
}

// removeAt drops the state at index and shifts deeper states down by one,
// keeping keys aligned with a stack that had the same entry removed.
func (s *SessionStore) removeAt(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	shifted := make(map[string]State, len(s.states))
	for key, state := range s.states {
		i, ok := pageKeyIndex(key)
		switch {
		case !ok || i < index:
			shifted[key] = state
		case i > index:
			shifted[PageKeyFor(i-1)] = state
		}
	}
	s.states = shifted
}

// Clear drops every saved state.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = make(map[string]State)
}

func (s *SessionStore) replace(states map[string]State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = states
}

// Session is the decoded form of a session blob.
type Session struct {
	Version int              `json:"version"`
	Cursor  int              `json:"cursor"`
	Entries []SessionEntry   `json:"entries"`
	States  map[string]State `json:"states,omitempty"`
}

// SessionEntry is the persisted part of a descriptor. The instance is never
// persisted.
type SessionEntry struct {
	TypeKey   TypeKey         `json:"type"`
	Parameter json.RawMessage `json:"parameter,omitempty"`
}

// Serialize encodes the stack and every saved state as one blob. Entries that
// opt out of persistence, and everything above them, are pruned first and the
// cursor is clamped to what remains. Every kept parameter must decode back to
// an equal value, otherwise ErrParameterNotRestorable is returned.
func (s *SessionStore) Serialize(stack *Stack) ([]byte, error) {
	keep := stack.Len()
	for i, d := range stack.entries {
		if !d.persist {
			keep = i
			break
		}
	}

	cursor := stack.cursor
	if cursor >= keep {
		cursor = keep - 1
	}

	session := Session{
		Version: sessionVersion,
		Cursor:  cursor,
		Entries: make([]SessionEntry, 0, keep),
		States:  make(map[string]State),
	}

	for _, d := range stack.entries[:keep] {
		entry := SessionEntry{TypeKey: d.typeKey}
		if d.parameter != nil {
			raw, err := json.Marshal(d.parameter)
			if err != nil {
				return nil, fmt.Errorf("serialize parameter of %s: %w", d.typeKey, err)
			}
			back, err := decodeParameterWith(d.decode, raw)
			if err != nil || !reflect.DeepEqual(back, d.parameter) {
				return nil, fmt.Errorf("%w: %s parameter of type %T", ErrParameterNotRestorable, d.typeKey, d.parameter)
			}
			entry.Parameter = raw
		}
		session.Entries = append(session.Entries, entry)
	}

	s.mu.RLock()
	for key, state := range s.states {
		if i, ok := pageKeyIndex(key); ok && i >= keep {
			continue
		}
		session.States[key] = state
	}
	s.mu.RUnlock()

	blob, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("serialize session: %w", err)
	}
	return blob, nil
}

// DecodeSession parses a blob without applying it. Parameters stay raw.
func DecodeSession(blob []byte) (*Session, error) {
	var session Session
	if err := json.Unmarshal(blob, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	if session.Version != sessionVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSession, session.Version)
	}
	if session.Cursor < -1 || session.Cursor >= len(session.Entries) {
		return nil, fmt.Errorf("%w: cursor %d outside %d entries", ErrCorruptSession, session.Cursor, len(session.Entries))
	}
	if len(session.Entries) > 0 && session.Cursor < 0 {
		return nil, fmt.Errorf("%w: non-empty stack without a current entry", ErrCorruptSession)
	}
	if session.States == nil {
		session.States = make(map[string]State)
	}
	return &session, nil
}

// Deserialize decodes a blob into a new stack, resolving each entry against
// registry, and replaces the store's states with the saved ones. Nothing is
// applied unless the whole blob decodes; on failure the store is left empty.
// Restored descriptors have no instance until first displayed.
func (s *SessionStore) Deserialize(blob []byte, registry *Registry) (*Stack, error) {
	stack, states, err := decodeStack(blob, registry)
	if err != nil {
		s.Clear()
		return nil, err
	}
	s.replace(states)
	return stack, nil
}

func decodeStack(blob []byte, registry *Registry) (*Stack, map[string]State, error) {
	session, err := DecodeSession(blob)
	if err != nil {
		return nil, nil, err
	}

	stack := NewStack()
	for i, entry := range session.Entries {
		parameter, err := registry.decodeParameter(entry.TypeKey, entry.Parameter)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: entry %d (%s): %v", ErrCorruptSession, i, entry.TypeKey, err)
		}
		d, err := registry.describe(entry.TypeKey, parameter)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: entry %d: %v", ErrCorruptSession, i, err)
		}
		stack.entries = append(stack.entries, d)
	}
	stack.cursor = session.Cursor

	return stack, session.States, nil
}
