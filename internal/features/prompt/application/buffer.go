package application

import "sync"

// TextBuffer is the host text field that owns the flat prompt text. Every
// SetText fires the change listeners with the new text.
type TextBuffer interface {
	Text() string
	SetText(text string)
	OnChange(fn func(text string))
}

// MemoryBuffer is an in-process TextBuffer.
type MemoryBuffer struct {
	mu        sync.RWMutex
	text      string
	listeners []func(string)
}

// NewMemoryBuffer creates a buffer holding text.
func NewMemoryBuffer(text string) *MemoryBuffer {
	return &MemoryBuffer{text: text}
}

func (b *MemoryBuffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// SetText replaces the text and notifies listeners outside the lock.
func (b *MemoryBuffer) SetText(text string) {
	b.mu.Lock()
	b.text = text
	listeners := append([]func(string){}, b.listeners...)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(text)
	}
}

func (b *MemoryBuffer) OnChange(fn func(text string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}
