package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Frame markers. A frame is Start, the decimal code, Delim-separated
// arguments, then End.
const (
	Start byte = '\002'
	End   byte = '\003'
	Delim byte = '\037'
)

// Version must match the version a client sends in CL_I_AM.
const Version = "1.0"

// BufferSize is the largest frame a single read is expected to carry.
const BufferSize = 1023

var (
	ErrMalformed  = errors.New("malformed message")
	ErrMissingArg = errors.New("missing argument")
)

type Message struct {
	Code Code
	Args []string
}

// New builds a message, formatting each argument with fmt.Sprint.
func New(code Code, args ...any) Message {
	m := Message{Code: code}
	for _, a := range args {
		switch v := a.(type) {
		case string:
			m.Args = append(m.Args, v)
		case float64:
			m.Args = append(m.Args, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			m.Args = append(m.Args, fmt.Sprint(v))
		}
	}
	return m
}

// Echo is a message with code carrying the same arguments as m.
func (m Message) Echo(code Code) Message {
	return Message{Code: code, Args: slices.Clone(m.Args)}
}

// Compile renders the message as one wire frame.
func (m Message) Compile() []byte {
	var b bytes.Buffer
	b.WriteByte(Start)
	b.WriteString(strconv.Itoa(int(m.Code)))
	for _, a := range m.Args {
		b.WriteByte(Delim)
		b.WriteString(sanitize(a))
	}
	b.WriteByte(End)
	return b.Bytes()
}

// sanitize strips framing bytes a player could smuggle into free text.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case rune(Start), rune(End), rune(Delim):
			return -1
		}
		return r
	}, s)
}

// Decode parses the body of a frame, without its Start and End markers.
func Decode(body []byte) (Message, error) {
	parts := strings.Split(string(body), string(Delim))
	code, err := strconv.Atoi(parts[0])
	if err != nil || code < 0 {
		return Message{}, fmt.Errorf("%w: bad code %q", ErrMalformed, parts[0])
	}
	m := Message{Code: Code(code)}
	if len(parts) > 1 {
		m.Args = parts[1:]
	}
	return m, nil
}

func (m Message) String() string {
	if len(m.Args) == 0 {
		return m.Code.String()
	}
	return fmt.Sprintf("%s[%s]", m.Code, strings.Join(m.Args, ","))
}

func (m Message) arg(i int) (string, error) {
	if i < 0 || i >= len(m.Args) {
		return "", fmt.Errorf("%w %d for %s", ErrMissingArg, i, m.Code)
	}
	return m.Args[i], nil
}

// Str returns argument i.
func (m Message) Str(i int) (string, error) {
	return m.arg(i)
}

// Int parses argument i as an integer.
func (m Message) Int(i int) (int, error) {
	a, err := m.arg(i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(a)
	if err != nil {
		return 0, fmt.Errorf("%w: argument %d of %s: %w", ErrMalformed, i, m.Code, err)
	}
	return v, nil
}

// Uint parses argument i as an unsigned integer.
func (m Message) Uint(i int) (uint64, error) {
	a, err := m.arg(i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(a, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: argument %d of %s: %w", ErrMalformed, i, m.Code, err)
	}
	return v, nil
}

// Float parses argument i as a finite float.
func (m Message) Float(i int) (float64, error) {
	a, err := m.arg(i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: argument %d of %s: %w", ErrMalformed, i, m.Code, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: argument %d of %s is not finite", ErrMalformed, i, m.Code)
	}
	return v, nil
}
