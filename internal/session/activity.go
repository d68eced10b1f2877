package session

import (
	"sync"
	"time"
)

// Level classifies an activity entry for display.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// retainLimit is how many entries the journal keeps; displayLimit is how
// many Recent exposes. The two caps are independent.
const (
	retainLimit  = 100
	displayLimit = 50
)

// Entry is one journaled event, newest first in the log.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
}

// ActivityLog is a fixed-capacity, most-recent-first event buffer fed by
// every component. Inserting past capacity evicts the oldest entries.
type ActivityLog struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// NewActivityLog creates an empty journal.
func NewActivityLog() *ActivityLog {
	return &ActivityLog{now: time.Now}
}

// Append inserts an entry at the front and truncates to capacity.
func (l *ActivityLog) Append(level Level, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]Entry{{Time: l.now(), Level: level, Message: message}}, l.entries...)
	if len(l.entries) > retainLimit {
		l.entries = l.entries[:retainLimit]
	}
}

// Recent returns copies of the newest entries, capped at the display
// limit.
func (l *ActivityLog) Recent() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.entries)
	if n > displayLimit {
		n = displayLimit
	}
	out := make([]Entry, n)
	copy(out, l.entries[:n])
	return out
}

// Len returns the number of retained entries.
func (l *ActivityLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
