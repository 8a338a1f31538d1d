package entities

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DiagnosticNote is one observation recorded while a run progresses.
type DiagnosticNote struct {
	Stage   Stage
	Subject string
	Message string
}

// Diagnostics is the run-scoped context passed through the pipeline. Deep
// functions record what they observe here instead of printing it.
type Diagnostics struct {
	RunID     string
	StartedAt time.Time

	mu          sync.Mutex
	credentials map[string]bool
	notes       []DiagnosticNote
}

// NewDiagnostics starts a diagnostic context with a fresh run id.
func NewDiagnostics(now time.Time) *Diagnostics {
	return &Diagnostics{
		RunID:       uuid.NewString(),
		StartedAt:   now,
		credentials: make(map[string]bool),
	}
}

// RecordCredential remembers whether a credential key resolved to a secret.
// The secret itself is never stored.
func (d *Diagnostics) RecordCredential(credential Credential) {
	if d == nil || credential.Key == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.credentials[credential.Key] = credential.Present()
}

// CredentialPresence returns a copy of the key -> present map.
func (d *Diagnostics) CredentialPresence() map[string]bool {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	presence := make(map[string]bool, len(d.credentials))
	for key, present := range d.credentials {
		presence[key] = present
	}
	return presence
}

// CredentialKeys returns the recorded keys in lexical order.
func (d *Diagnostics) CredentialKeys() []string {
	presence := d.CredentialPresence()
	keys := make([]string, 0, len(presence))
	for key := range presence {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Note appends an observation. Safe for concurrent use.
func (d *Diagnostics) Note(stage Stage, subject, format string, args ...any) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notes = append(d.notes, DiagnosticNote{
		Stage:   stage,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	})
}

// Notes returns a copy of the recorded notes in insertion order.
func (d *Diagnostics) Notes() []DiagnosticNote {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DiagnosticNote(nil), d.notes...)
}
