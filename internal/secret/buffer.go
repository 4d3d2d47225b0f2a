package secret

import (
	"crypto/subtle"

	"github.com/awnumar/memguard"
)

// Buffer is a sensitive byte string. The zero value and nil are both empty.
type Buffer struct {
	lb *memguard.LockedBuffer
}

// New moves b into a Buffer. It takes ownership of b: the slice is zeroed
// before New returns.
func New(b []byte) *Buffer {
	return &Buffer{lb: memguard.NewBufferFromBytes(b)}
}

// FromString copies s into a Buffer. The string itself cannot be wiped, so
// this is meant for values that already live in immutable memory (widget
// text, test fixtures).
func FromString(s string) *Buffer {
	lb := memguard.NewBuffer(len(s))
	if len(s) > 0 {
		copy(lb.Bytes(), s)
		lb.Freeze()
	}
	return &Buffer{lb: lb}
}

// Bytes borrows the underlying memory. The slice is invalid after Destroy
// and must not be retained or modified.
func (b *Buffer) Bytes() []byte {
	if b == nil || b.lb == nil {
		return nil
	}
	return b.lb.Bytes()
}

// Len reports the number of bytes held.
func (b *Buffer) Len() int {
	return len(b.Bytes())
}

// Empty reports whether the buffer holds no bytes.
func (b *Buffer) Empty() bool {
	return b.Len() == 0
}

// Alive reports whether the buffer still holds memory.
func (b *Buffer) Alive() bool {
	return b != nil && b.lb != nil && b.lb.IsAlive()
}

// Clone returns an independent copy owned by the caller.
func (b *Buffer) Clone() *Buffer {
	src := b.Bytes()
	lb := memguard.NewBuffer(len(src))
	if len(src) > 0 {
		lb.Copy(src)
		lb.Freeze()
	}
	return &Buffer{lb: lb}
}

// Equal compares two buffers in constant time.
func (b *Buffer) Equal(other *Buffer) bool {
	return subtle.ConstantTimeCompare(b.Bytes(), other.Bytes()) == 1
}

// Destroy zeroes and releases the memory. Safe on nil and safe to repeat.
func (b *Buffer) Destroy() {
	if b == nil || b.lb == nil {
		return
	}
	b.lb.Destroy()
	b.lb = nil
}

// String never reveals the contents.
func (b *Buffer) String() string {
	return "[redacted]"
}

// Wipe zeroes a plain byte slice in place.
func Wipe(b []byte) {
	memguard.WipeBytes(b)
}
