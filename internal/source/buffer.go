// Package source defines the input to the NexusLang toolchain: a finite
// sequence of code points paired with a file origin.
package source

// Buffer is a source file's text together with the logical name used to
// render diagnostics. It is immutable once constructed; the lexer reads it
// byte-by-byte and never mutates it.
type Buffer struct {
	Name string // logical file name, e.g. "main.nx" or "<repl>"
	Text string // UTF-8 source text
}

// New wraps source text with a logical file name.
func New(name, text string) *Buffer {
	return &Buffer{Name: name, Text: text}
}

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int {
	return len(b.Text)
}
