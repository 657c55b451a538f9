package protocol

import (
	"bytes"
	"fmt"
)

// Parser splits a byte stream into frames. Reads may end mid-frame; the
// partial frame is kept until the rest arrives.
type Parser struct {
	buf []byte
}

// Feed appends newly read bytes.
func (p *Parser) Feed(data []byte) {
	p.buf = append(p.buf, data...)
}

// Next returns the next complete message. ok is false when no complete
// frame is buffered. A malformed frame is consumed and reported as an
// error so that later frames still parse.
func (p *Parser) Next() (msg Message, ok bool, err error) {
	start := bytes.IndexByte(p.buf, Start)
	if start < 0 {
		p.buf = p.buf[:0]
		return Message{}, false, nil
	}
	p.buf = p.buf[start:]

	end := bytes.IndexByte(p.buf, End)
	if end < 0 {
		if len(p.buf) > BufferSize {
			p.buf = p.buf[:0]
			return Message{}, false, fmt.Errorf("%w: frame exceeds %d bytes", ErrMalformed, BufferSize)
		}
		return Message{}, false, nil
	}

	body := p.buf[1:end]
	// A Start inside the body means the earlier frame was cut short.
	if i := bytes.LastIndexByte(body, Start); i >= 0 {
		p.buf = p.buf[i+1:]
		return Message{}, false, fmt.Errorf("%w: unterminated frame", ErrMalformed)
	}

	msg, err = Decode(body)
	p.buf = p.buf[end+1:]
	if err != nil {
		return Message{}, false, err
	}
	return msg, true, nil
}

// Drain returns every complete message currently buffered, along with any
// decoding errors met on the way.
func (p *Parser) Drain() ([]Message, []error) {
	var msgs []Message
	var errs []error
	for {
		msg, ok, err := p.Next()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !ok {
			return msgs, errs
		}
		msgs = append(msgs, msg)
	}
}

// Buffered is the number of bytes held for an incomplete frame.
func (p *Parser) Buffered() int {
	return len(p.buf)
}
