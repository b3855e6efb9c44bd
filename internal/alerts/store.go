package alerts

import (
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// StorageKey is the durable key under which the dismissed alert IDs live,
// as a JSON array of strings. Absence of the key means nothing dismissed.
const StorageKey = "appski.dismissed-alerts"

// Severity is the alert severity type.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Alert is one user-facing notice. Lower priority numbers are more urgent.
type Alert struct {
	ID          string    `json:"id"`
	Type        Severity  `json:"type"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Priority    int       `json:"priority"`
	Dismissible bool      `json:"dismissible"`
	ActionURL   string    `json:"actionUrl,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Store holds the session's alert list and a persisted set of dismissed
// alert IDs. Dismissed IDs survive restarts through the Storage backend and
// are tracked independently of the alert entities themselves: a stale ID
// that matches no current alert is harmless and simply never matches.
type Store struct {
	storage Storage
	logger  *slog.Logger

	mu        sync.RWMutex
	alerts    []Alert
	dismissed map[string]struct{}
}

// NewStore creates a Store seeded with the given alerts and loads the
// dismissed set from storage. A read failure degrades to an empty set and
// is logged, never returned.
func NewStore(seed []Alert, storage Storage, logger *slog.Logger) *Store {
	s := &Store{
		storage:   storage,
		logger:    logger,
		alerts:    append([]Alert(nil), seed...),
		dismissed: make(map[string]struct{}),
	}
	s.loadDismissed()
	return s
}

func (s *Store) loadDismissed() {
	raw, ok, err := s.storage.Get(StorageKey)
	if err != nil {
		s.logger.Warn("reading dismissed alerts failed, starting with empty set", "error", err)
		return
	}
	if !ok {
		return
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.logger.Warn("dismissed alerts payload is corrupt, starting with empty set", "error", err)
		return
	}
	for _, id := range ids {
		s.dismissed[id] = struct{}{}
	}
}

// ActiveAlerts returns all non-dismissed alerts sorted ascending by
// priority. The sort is stable: equal priorities keep the original order.
func (s *Store) ActiveAlerts() []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Alert
	for _, a := range s.alerts {
		if _, gone := s.dismissed[a.ID]; !gone {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// ByType returns the active alerts with the given severity.
func (s *Store) ByType(sev Severity) []Alert {
	var out []Alert
	for _, a := range s.ActiveAlerts() {
		if a.Type == sev {
			out = append(out, a)
		}
	}
	return out
}

// ByCategory returns the active alerts with the given category.
func (s *Store) ByCategory(category string) []Alert {
	var out []Alert
	for _, a := range s.ActiveAlerts() {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// DismissAlert adds the ID to the dismissed set and persists the full set
// immediately. Idempotent: dismissing an already-dismissed ID changes
// nothing. The dismissible flag is not enforced here; presentation decides
// whether to offer the action.
func (s *Store) DismissAlert(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, already := s.dismissed[id]; already {
		return
	}
	s.dismissed[id] = struct{}{}
	s.persistDismissedLocked()
}

// RestoreAlerts clears the dismissed set and persists the empty set.
func (s *Store) RestoreAlerts() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dismissed = make(map[string]struct{})
	s.persistDismissedLocked()
}

// AddAlert appends an alert to the in-memory list. Persisted dismissed
// state is unaffected; if the ID was dismissed earlier it stays hidden.
func (s *Store) AddAlert(a Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
}

// DismissedCount returns the size of the dismissed set.
func (s *Store) DismissedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dismissed)
}

// persistDismissedLocked writes the dismissed set to storage, best-effort.
// Storage failures are logged and swallowed: the set then lives only for
// this session. Callers must hold the write lock.
func (s *Store) persistDismissedLocked() {
	ids := make([]string, 0, len(s.dismissed))
	for id := range s.dismissed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	payload, err := json.Marshal(ids)
	if err != nil {
		s.logger.Warn("marshaling dismissed alerts failed", "error", err)
		return
	}
	if err := s.storage.Set(StorageKey, string(payload)); err != nil {
		s.logger.Warn("persisting dismissed alerts failed, set is session-only", "error", err)
	}
}
