package listener

import (
	"bytes"
	"io"
)

var (
	crlf  = []byte("\r\n")
	crnul = []byte("\r\x00")
	cr    = []byte("\r")
	lf    = []byte("\n")
)

// lineEndings adapts an operator connection to plain \n line endings:
// input lines ending in \r\n, \r\0 or \r read as \n, and every \n written
// goes out as \r\n.
type lineEndings struct {
	rw io.ReadWriter
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &lineEndings{rw: rw}
}

func (c *lineEndings) Read(p []byte) (int, error) {
	n, err := c.rw.Read(p)
	if n > 0 {
		data := bytes.ReplaceAll(p[:n], crlf, lf)
		data = bytes.ReplaceAll(data, crnul, lf)
		data = bytes.ReplaceAll(data, cr, lf)
		n = copy(p, data)
	}
	return n, err
}

// Write reports len(p) on success even though more bytes go out.
func (c *lineEndings) Write(p []byte) (int, error) {
	_, err := c.rw.Write(bytes.ReplaceAll(p, lf, crlf))
	if err != nil {
		return 0, err
	}
	return len(p), nil
}
