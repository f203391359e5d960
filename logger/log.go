// Package logger provides a small in-memory event log for the core.
//
// The core never writes to stdout or a file by itself. A host drains the
// log with Write/Tail when it wants to show diagnostics. Consecutive
// entries with the same tag and detail are collapsed into a repeat count
// instead of growing the log, since HAL failures and flash protocol errors
// tend to repeat every call until the host notices and stops asking.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Entry is a single log line.
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	repeated  int
}

func (e *Entry) String() string {
	s := strings.Builder{}
	fmt.Fprintf(&s, "%s: %s", e.Tag, e.Detail)
	if e.repeated > 0 {
		fmt.Fprintf(&s, " (x%d)", e.repeated+1)
	}
	s.WriteRune('\n')
	return s.String()
}

// maxEntries bounds the log so a runaway condition (a HAL that always
// fails, say) doesn't grow memory without bound.
const maxEntries = 512

var (
	mu      sync.Mutex
	entries []Entry
)

// Log adds an entry to the log, or bumps the repeat count of the last entry
// if it has the same tag and detail.
func Log(tag, detail string) {
	mu.Lock()
	defer mu.Unlock()

	tag = strings.ReplaceAll(tag, "\n", " ")
	detail = strings.ReplaceAll(detail, "\n", " ")

	if n := len(entries); n > 0 {
		last := &entries[n-1]
		if last.Tag == tag && last.Detail == detail {
			last.repeated++
			last.Timestamp = time.Now()
			return
		}
	}

	entries = append(entries, Entry{Timestamp: time.Now(), Tag: tag, Detail: detail})
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}
}

// Logf adds a formatted entry to the log.
func Logf(tag, format string, args ...interface{}) {
	Log(tag, fmt.Sprintf(format, args...))
}

// Clear empties the log.
func Clear() {
	mu.Lock()
	defer mu.Unlock()
	entries = entries[:0]
}

// Write dumps every entry currently in the log to output.
func Write(output io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	for _, e := range entries {
		io.WriteString(output, e.String())
	}
}

// Tail writes the last n entries to output.
func Tail(output io.Writer, n int) {
	mu.Lock()
	defer mu.Unlock()
	if n > len(entries) {
		n = len(entries)
	}
	for _, e := range entries[len(entries)-n:] {
		io.WriteString(output, e.String())
	}
}
