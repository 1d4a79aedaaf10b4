// Package notification handles terminal OSC escape sequence detection and
// the per-session activity state derived from it.
//
// This module parses OSC (Operating System Command) escape sequences from
// PTY output that terminals use for notifications. A claude child uses
// these to signal events like task completion, which drives the
// Active/Stopped indicator next to each session in the selector.
//
// Supported notification types:
// - OSC 9: Simple notification (ESC ] 9 ; message BEL)
// - OSC 777: Rich notification (ESC ] 777 ; notify ; title ; body BEL)
package notification

import (
	"strings"
	"sync"
	"time"
)

// Type identifies the kind of notification.
type Type string

const (
	// TypeOSC9 is a simple notification with message.
	TypeOSC9 Type = "osc9"

	// TypeOSC777 is a rich notification with title and body.
	TypeOSC777 Type = "osc777"
)

// Notification represents a detected terminal notification.
type Notification struct {
	// Type is the notification type (osc9 or osc777).
	Type Type

	// Message is the notification message (OSC 9).
	Message string

	// Title is the notification title (OSC 777).
	Title string

	// Body is the notification body (OSC 777).
	Body string
}

// Detect parses terminal notifications from raw PTY output.
//
// Parses OSC escape sequences and returns any detected notifications.
// Supports both BEL (0x07) and ST (ESC \) terminators.
//
// OSC 9 messages that look like escape sequences (only digits and
// semicolons) are filtered out to avoid false positives.
func Detect(data []byte) []Notification {
	var notifications []Notification

	i := 0
	for i < len(data) {
		// Check for OSC sequence start: ESC ]
		if i+1 < len(data) && data[i] == 0x1b && data[i+1] == ']' {
			oscStart := i + 2
			oscEnd := -1

			for j := oscStart; j < len(data); j++ {
				if data[j] == 0x07 {
					oscEnd = j
					break
				} else if j+1 < len(data) && data[j] == 0x1b && data[j+1] == '\\' {
					oscEnd = j
					break
				}
			}

			if oscEnd != -1 {
				oscContent := data[oscStart:oscEnd]

				if len(oscContent) > 2 && oscContent[0] == '9' && oscContent[1] == ';' {
					message := string(oscContent[2:])
					if !isEscapeSequence(message) && message != "" {
						notifications = append(notifications, Notification{
							Type:    TypeOSC9,
							Message: message,
						})
					}
				} else if len(oscContent) > 11 && string(oscContent[:11]) == "777;notify;" {
					content := string(oscContent[11:])
					parts := strings.SplitN(content, ";", 2)
					title := ""
					body := ""
					if len(parts) > 0 {
						title = parts[0]
					}
					if len(parts) > 1 {
						body = parts[1]
					}
					if title != "" || body != "" {
						notifications = append(notifications, Notification{
							Type:  TypeOSC777,
							Title: title,
							Body:  body,
						})
					}
				}

				i = oscEnd + 1
				continue
			}
		}

		i++
	}

	return notifications
}

// isEscapeSequence returns true if the message looks like an escape sequence
// (only contains digits and semicolons).
func isEscapeSequence(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !isDigitOrSemicolon(c) {
			return false
		}
	}
	return true
}

func isDigitOrSemicolon(c rune) bool {
	return (c >= '0' && c <= '9') || c == ';'
}

// stoppedAfter is the silence window following a notification before the
// session is considered stopped.
const stoppedAfter = 2 * time.Second

// Tracker derives a session's Active/Stopped state from its output stream.
// A session is active while it keeps producing output; once an OSC 9/777
// notification arrives (claude signalling a finished task) and the output
// goes quiet for stoppedAfter, it is stopped.
//
// Observe runs on the session's reader goroutine while Stopped is read
// from the manager thread, so the fields are mutex-guarded.
type Tracker struct {
	mu         sync.Mutex
	lastOutput time.Time
	notified   bool

	now func() time.Time
}

// NewTracker returns a Tracker using the wall clock.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Observe records a chunk of session output, scanning it for notifications.
func (t *Tracker) Observe(data []byte) {
	notified := len(Detect(data)) > 0

	t.mu.Lock()
	t.lastOutput = t.now()
	if notified {
		t.notified = true
	}
	t.mu.Unlock()
}

// Stopped reports whether the session has signalled completion and gone
// quiet.
func (t *Tracker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.notified {
		return false
	}
	return t.now().Sub(t.lastOutput) >= stoppedAfter
}
