package core

// streaming.go holds the readers placed between a remote object body and the
// CSV parser. They work on the stream as it arrives so a large object is
// never buffered whole before decoding starts:
//
//   - countingReader: tracks bytes pulled from the source
//   - cleanReader: drops a leading UTF-8 BOM and replaces invalid UTF-8
//     bytes with '?'

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// countingReader counts the bytes read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func newCountingReader(r io.Reader) *countingReader {
	return &countingReader{r: r}
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// BytesRead returns the number of bytes read so far.
func (c *countingReader) BytesRead() int64 {
	return c.n
}

// cleanReader normalizes the text handed to encoding/csv. Windows tools
// commonly prefix exports with a BOM, which would otherwise end up glued to
// the first header label and break label matching.
type cleanReader struct {
	br         *bufio.Reader
	bomChecked bool
	pending    []byte // encoded rune bytes that did not fit the last p
	err        error
}

func newCleanReader(r io.Reader) *cleanReader {
	return &cleanReader{br: bufio.NewReader(r)}
}

func (c *cleanReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if !c.bomChecked {
		c.bomChecked = true
		if head, err := c.br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			if _, err := c.br.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}

	n := copy(p, c.pending)
	c.pending = c.pending[n:]

	var buf [utf8.UTFMax]byte
	for n < len(p) && c.err == nil {
		r, size, err := c.br.ReadRune()
		if err != nil {
			c.err = err
			break
		}

		if r == utf8.RuneError && size == 1 {
			p[n] = '?'
			n++
			continue
		}

		w := utf8.EncodeRune(buf[:], r)
		k := copy(p[n:], buf[:w])
		n += k
		if k < w {
			c.pending = append(c.pending[:0], buf[k:w]...)
		}
	}

	if n > 0 {
		return n, nil
	}
	return 0, c.err
}
