package domain

import (
	"errors"

	chatdomain "advanced-prompt/internal/features/chat/domain"
	cookdomain "advanced-prompt/internal/features/cook/domain"
	promptdomain "advanced-prompt/internal/features/prompt/domain"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrModeConflict    = errors.New("session mode does not allow this operation")
)

// Mode is what a session is doing on its own, apart from user edits.
type Mode string

const (
	ModeIdle      Mode = "IDLE"
	ModeCooking   Mode = "COOKING"
	ModeAutoPilot Mode = "AUTO_PILOT"
)

// Form mirrors the host's generation form: what the sweep reads and writes,
// plus the pending job trigger the host polls.
type Form struct {
	Live       cookdomain.Live   `json:"live"`
	Applied    *cookdomain.State `json:"applied,omitempty"`
	PendingJob bool              `json:"pending_job"`
	JobsIssued int               `json:"jobs_issued"`
	Tags       []string          `json:"tags,omitempty"`
}

// Snapshot is the full session view returned to hosts.
type Snapshot struct {
	ID         string                 `json:"id"`
	Mode       Mode                   `json:"mode"`
	Text       string                 `json:"text"`
	Rows       []promptdomain.Row     `json:"rows"`
	EditState  promptdomain.EditState `json:"edit_state"`
	ActiveRow  int                    `json:"active_row"`
	TokenCount int                    `json:"token_count"`
	Form       Form                   `json:"form"`
	Cooked     int                    `json:"cooked"`
	Notice     string                 `json:"notice,omitempty"`
	LastRoll   *chatdomain.Roll       `json:"last_roll,omitempty"`
}
