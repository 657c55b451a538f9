package listener

import (
	"bytes"
	"testing"

	"github.com/pixil98/go-testutil"
)

type bufferRW struct {
	in  *bytes.Buffer
	out bytes.Buffer
}

func (b *bufferRW) Read(p []byte) (int, error)  { return b.in.Read(p) }
func (b *bufferRW) Write(p []byte) (int, error) { return b.out.Write(p) }

func TestLineEndings_Read(t *testing.T) {
	tests := map[string]struct {
		input string
		exp   string
	}{
		"crlf":       {input: "who\r\n", exp: "who\n"},
		"cr nul":     {input: "who\r\x00", exp: "who\n"},
		"bare cr":    {input: "who\r", exp: "who\n"},
		"plain lf":   {input: "who\n", exp: "who\n"},
		"two lines":  {input: "who\r\nhelp\r\n", exp: "who\nhelp\n"},
		"no newline": {input: "who", exp: "who"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rw := newCRLFReadWriter(&bufferRW{in: bytes.NewBufferString(tt.input)})
			buf := make([]byte, 64)
			n, err := rw.Read(buf)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "read", string(buf[:n]), tt.exp)
		})
	}
}

func TestLineEndings_Write(t *testing.T) {
	inner := &bufferRW{in: &bytes.Buffer{}}
	rw := newCRLFReadWriter(inner)

	n, err := rw.Write([]byte("a\nb\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "reported", n, 4)
	testutil.AssertEqual(t, "written", inner.out.String(), "a\r\nb\r\n")
}
