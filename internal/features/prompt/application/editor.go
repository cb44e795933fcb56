package application

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"advanced-prompt/internal/features/prompt/domain"
)

// Snapshot is the editor state as seen by a host.
type Snapshot struct {
	Text       string           `json:"text"`
	Rows       []domain.Row     `json:"rows"`
	State      domain.EditState `json:"state"`
	ActiveRow  int              `json:"active_row"`
	TokenCount int              `json:"token_count"`
}

// rowSlot is one position of the row arena. live holds the plain row text;
// it is reset from the flat text on every render unless edited is set.
type rowSlot struct {
	row    domain.Row
	live   string
	edited bool
}

// Editor keeps the row view of a TextBuffer in sync with its text. The text
// is the single source of truth: every operation reads it, computes a new
// full text and writes it back once, and rows are rebuilt from the change
// notification.
type Editor struct {
	opMu sync.Mutex // serializes read-recompute-write operations
	mu   sync.Mutex // guards the fields below

	buffer   TextBuffer
	renderer RowRenderer
	log      logrus.FieldLogger

	slots     []rowSlot
	state     domain.EditState
	activeRow int
}

// NewEditor wires an editor to buffer and renders the initial rows.
func NewEditor(buffer TextBuffer, renderer RowRenderer, log logrus.FieldLogger) *Editor {
	e := &Editor{
		buffer:    buffer,
		renderer:  renderer,
		log:       log,
		state:     domain.EditIdle,
		activeRow: -1,
	}
	buffer.OnChange(e.onTextChanged)

	e.mu.Lock()
	e.refreshLocked(buffer.Text())
	e.mu.Unlock()
	return e
}

func (e *Editor) onTextChanged(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.refreshLocked(text)
}

// refreshLocked re-tokenizes text and resizes the slot arena by appending or
// trimming, so slots that survive keep their position. While Editing, rows
// the user has typed into keep their live value; every other slot follows
// the new text.
func (e *Editor) refreshLocked(text string) {
	rows := domain.ToRows(text)
	delta := RowDelta{TokenCount: domain.CountTokens(text)}

	pending := map[int]string{}
	if e.state == domain.EditEditing {
		for i, s := range e.slots {
			if s.edited {
				pending[i] = s.live
			}
		}
	}

	if n := len(rows) - len(e.slots); n > 0 {
		e.slots = append(e.slots, make([]rowSlot, n)...)
		delta.Added = n
	} else if n < 0 {
		e.slots = e.slots[:len(rows)]
		delta.Removed = -n
	}
	for i, r := range rows {
		live := r.Raw
		if r.Placeholder {
			live = ""
		}
		e.slots[i] = rowSlot{row: r, live: live}
		if v, ok := pending[i]; ok {
			e.slots[i].live = v
			e.slots[i].edited = true
			delete(pending, i)
		}
	}
	if len(pending) > 0 {
		e.log.WithField("rows", len(pending)).Warn("Dropping edits of rows removed by a text change")
	}
	if e.activeRow >= len(e.slots) {
		e.activeRow = -1
		if e.state == domain.EditEditing && !e.hasEditsLocked() {
			e.state = domain.EditIdle
		}
	}

	delta.Rows = rows
	if e.renderer != nil {
		e.renderer.Render(delta)
	}
}

// Snapshot returns the current text and rows.
func (e *Editor) Snapshot() Snapshot {
	text := e.buffer.Text()

	e.mu.Lock()
	defer e.mu.Unlock()
	rows := make([]domain.Row, len(e.slots))
	for i, s := range e.slots {
		rows[i] = s.row
	}
	return Snapshot{
		Text:       text,
		Rows:       rows,
		State:      e.state,
		ActiveRow:  e.activeRow,
		TokenCount: domain.CountTokens(text),
	}
}

// State returns the editing state.
func (e *Editor) State() domain.EditState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SetText replaces the flat text, as when the user types into the host field.
func (e *Editor) SetText(text string) {
	e.opMu.Lock()
	defer e.opMu.Unlock()
	e.buffer.SetText(text)
}

// Text returns the flat text.
func (e *Editor) Text() string {
	return e.buffer.Text()
}

// Focus moves the editor into the Editing state on row index.
func (e *Editor) Focus(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkIndexLocked(index); err != nil {
		return err
	}
	e.state = domain.EditEditing
	e.activeRow = index
	return nil
}

// Edit records a keystroke on row index with value as plain phrase text. The
// flat text is not touched until the row is committed.
func (e *Editor) Edit(index int, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkIndexLocked(index); err != nil {
		return err
	}
	e.state = domain.EditEditing
	e.activeRow = index
	e.slots[index].live = value
	e.slots[index].edited = true
	return nil
}

// EditMarkup is Edit for a renderer that sends back the styled row markup.
func (e *Editor) EditMarkup(index int, markup string) error {
	return e.Edit(index, domain.StripMarkup(markup))
}

func (e *Editor) hasEditsLocked() bool {
	for _, s := range e.slots {
		if s.edited {
			return true
		}
	}
	return false
}

// settleLocked ends Editing before a structural change: pending edits are
// committed, a focus without edits is simply dropped. Expects opMu to be held.
func (e *Editor) settleLocked() {
	e.mu.Lock()
	editing := e.state == domain.EditEditing
	edited := e.hasEditsLocked()
	if editing && !edited {
		e.state = domain.EditIdle
		e.activeRow = -1
	}
	e.mu.Unlock()

	if editing && edited {
		e.commitLocked()
	}
}

// Commit rebuilds the flat text from the live row values (blur, Enter or Tab)
// and returns to Idle.
func (e *Editor) Commit() Snapshot {
	e.opMu.Lock()
	e.commitLocked()
	e.opMu.Unlock()
	return e.Snapshot()
}

// commitLocked expects opMu to be held.
func (e *Editor) commitLocked() {
	e.mu.Lock()
	values := make([]string, len(e.slots))
	for i, s := range e.slots {
		values[i] = s.live
	}
	e.state = domain.EditCommitting
	e.mu.Unlock()

	text := domain.ToText(values)
	e.log.WithField("rows", len(values)).Debug("Committing rows")
	e.buffer.SetText(text)

	e.mu.Lock()
	e.state = domain.EditIdle
	e.activeRow = -1
	for i := range e.slots {
		e.slots[i].edited = false
	}
	e.mu.Unlock()
}

// MoveRow drags the phrase at source onto target.
func (e *Editor) MoveRow(source, target int) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()
	e.settleLocked()

	text := e.buffer.Text()
	n := len(domain.Tokenize(text))
	if source < 0 || source >= n || target < 0 || target >= n {
		return fmt.Errorf("move %d to %d of %d rows: %w", source, target, n, domain.ErrRowOutOfRange)
	}
	e.buffer.SetText(domain.MoveText(text, source, target))
	return nil
}

// DeleteRow removes the phrase shown on row index from the flat text.
func (e *Editor) DeleteRow(index int) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()
	e.settleLocked()

	e.mu.Lock()
	if err := e.checkIndexLocked(index); err != nil {
		e.mu.Unlock()
		return err
	}
	rowText := e.slots[index].row.Raw
	e.mu.Unlock()

	e.buffer.SetText(domain.DeleteByRowIdentity(e.buffer.Text(), rowText))
	return nil
}

// AdjustWeight scrolls the spanIndex-th weight of row index by deltaSteps.
func (e *Editor) AdjustWeight(index, spanIndex, deltaSteps int) error {
	return e.mutateRow(index, func(phrase string) (string, error) {
		return domain.AdjustWeightAt(phrase, spanIndex, deltaSteps)
	})
}

// ToggleEmphasis scrolls the spanIndex-th emphasis or de-emphasis span of row index.
func (e *Editor) ToggleEmphasis(index int, kind domain.SpanKind, spanIndex int, dir domain.Direction) error {
	if kind != domain.SpanEmphasis && kind != domain.SpanDeEmphasis {
		return fmt.Errorf("span kind %q cannot be toggled", kind)
	}
	return e.mutateRow(index, func(phrase string) (string, error) {
		return domain.ToggleEmphasisAt(phrase, kind, spanIndex, dir)
	})
}

// AdjustWrapper scrolls the wrapper of row index by one level.
func (e *Editor) AdjustWrapper(index int, dir domain.Direction) error {
	return e.mutateRow(index, func(phrase string) (string, error) {
		w, v := domain.Decompose(phrase)
		return domain.Recompose(domain.AdjustWrapper(w, dir), v), nil
	})
}

// AddWeight appends a default weight after a selection in row index.
func (e *Editor) AddWeight(index, start, end int) error {
	return e.mutateRow(index, func(phrase string) (string, error) {
		return domain.AddWeight(phrase, start, end), nil
	})
}

// WrapSelection wraps the first occurrence of selection in the flat text.
func (e *Editor) WrapSelection(selection string, kind domain.WrapKind) {
	e.opMu.Lock()
	defer e.opMu.Unlock()
	e.settleLocked()
	e.buffer.SetText(domain.WrapSelection(e.buffer.Text(), selection, kind))
}

// mutateRow rewrites the live text of one row and commits immediately, the
// way wheel gestures take effect.
func (e *Editor) mutateRow(index int, fn func(phrase string) (string, error)) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	if err := e.checkIndexLocked(index); err != nil {
		e.mu.Unlock()
		return err
	}
	updated, err := fn(e.slots[index].live)
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("row %d: %w", index, err)
	}
	e.slots[index].live = updated
	e.mu.Unlock()

	e.commitLocked()
	return nil
}

func (e *Editor) checkIndexLocked(index int) error {
	if index < 0 || index >= len(e.slots) {
		return fmt.Errorf("row %d of %d: %w", index, len(e.slots), domain.ErrRowOutOfRange)
	}
	return nil
}
