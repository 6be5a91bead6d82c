package ui

import (
	"fmt"
	"html"
	"sync"
	"time"
)

// Severity classifies a toast message.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// class maps a severity onto its visual style, same palette the old
// frontend used.
func (s Severity) class() string {
	switch s {
	case SeverityError:
		return "text-bg-danger"
	case SeveritySuccess:
		return "text-bg-success"
	default:
		return "text-bg-primary"
	}
}

// Toaster is the notification surface handed to every module.
type Toaster interface {
	ShowToast(message string, severity Severity)
}

// ToastHost renders transient messages into the toast-container anchor
// and guarantees their removal once the dismissal timer fires. Callers
// never manage cleanup. If the page has no toast-container, ShowToast
// is a no-op.
type ToastHost struct {
	doc      Document
	duration time.Duration

	mu     sync.Mutex
	nextID int
	active []toast
}

type toast struct {
	id       int
	message  string
	severity Severity
}

// NewToastHost creates a host whose toasts dismiss after duration.
func NewToastHost(doc Document, duration time.Duration) *ToastHost {
	return &ToastHost{doc: doc, duration: duration}
}

func (h *ToastHost) ShowToast(message string, severity Severity) {
	anchor, ok := h.doc.Anchor(AnchorToastContainer)
	if !ok {
		return
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.active = append(h.active, toast{id: id, message: message, severity: severity})
	h.renderLocked(anchor)
	h.mu.Unlock()

	time.AfterFunc(h.duration, func() {
		h.dismiss(id)
	})
}

func (h *ToastHost) dismiss(id int) {
	anchor, ok := h.doc.Anchor(AnchorToastContainer)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	kept := h.active[:0]
	for _, t := range h.active {
		if t.id != id {
			kept = append(kept, t)
		}
	}
	h.active = kept
	h.renderLocked(anchor)
}

func (h *ToastHost) renderLocked(anchor *Anchor) {
	var out string
	for _, t := range h.active {
		out += fmt.Sprintf(
			`<div class="toast align-items-center %s border-0" role="alert"><div class="toast-body">%s</div></div>`,
			t.severity.class(), html.EscapeString(t.message),
		)
	}
	anchor.SetHTML(out)
}
