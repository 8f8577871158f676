// Package message implements the line-oriented wire protocol spoken between
// an APT acquisition method and the calling package manager. A message is a
// numeric status line followed by ordered key/value headers and a blank line.
package message

import (
	"bytes"
	"strconv"
	"strings"
)

// Type identifies a protocol message. The value is the numeric code that
// appears on the wire.
type Type uint16

const (
	Capabilities   Type = 100
	Log            Type = 101
	Status         Type = 102
	URIStart       Type = 200
	URIDone        Type = 201
	URIFailure     Type = 400
	GeneralFailure Type = 401
	URIAcquire     Type = 600
	Configuration  Type = 601
)

// Header key constants
const (
	HeaderURI            = "URI"
	HeaderFilename       = "Filename"
	HeaderMessage        = "Message"
	HeaderSize           = "Size"
	HeaderLastModified   = "Last-Modified"
	HeaderVersion        = "Version"
	HeaderSendConfig     = "Send-Config"
	HeaderSingleInstance = "Single-Instance"
)

// Code returns the numeric wire code of the message type.
func (t Type) Code() uint16 {
	return uint16(t)
}

// Description returns the fixed human-readable description of the message
// type, as written on the status line.
func (t Type) Description() string {
	switch t {
	case Capabilities:
		return "Capabilities"
	case Log:
		return "Log"
	case Status:
		return "Status"
	case URIStart:
		return "URI Start"
	case URIDone:
		return "URI Done"
	case URIFailure:
		return "URI Failure"
	case GeneralFailure:
		return "General Failure"
	case URIAcquire:
		return "URI Acquire"
	case Configuration:
		return "Configuration"
	}
	return "Unknown"
}

func typeFromCode(code uint16) (Type, bool) {
	switch Type(code) {
	case Capabilities, Log, Status, URIStart, URIDone, URIFailure,
		GeneralFailure, URIAcquire, Configuration:
		return Type(code), true
	}
	return 0, false
}

// Header is a single key/value pair attached to a message. The key must not
// contain a colon and the value must not contain a newline.
type Header struct {
	Key   string
	Value string
}

// Message is one protocol message: a type plus its headers in wire order.
// Duplicate keys are allowed; lookup returns the first match.
type Message struct {
	Type    Type
	Headers []Header
}

// New constructs a message with the given headers, preserving their order.
func New(t Type, headers ...Header) *Message {
	return &Message{Type: t, Headers: headers}
}

// NewCapabilities builds the startup capabilities announcement.
func NewCapabilities(version string) *Message {
	return New(Capabilities,
		Header{HeaderVersion, version},
		Header{HeaderSendConfig, "true"},
		Header{HeaderSingleInstance, "true"},
	)
}

// NewStatus builds an interim progress report.
func NewStatus(text string) *Message {
	return New(Status, Header{HeaderMessage, text})
}

// NewLog builds a log line addressed to the controller.
func NewLog(text string) *Message {
	return New(Log, Header{HeaderMessage, text})
}

// NewURIStart announces that a transfer is beginning.
func NewURIStart(uri string, size uint64, lastModified string) *Message {
	return New(URIStart,
		Header{HeaderURI, uri},
		Header{HeaderSize, strconv.FormatUint(size, 10)},
		Header{HeaderLastModified, lastModified},
	)
}

// NewURIDone reports a completed acquisition.
func NewURIDone(uri, filename string) *Message {
	return New(URIDone,
		Header{HeaderURI, uri},
		Header{HeaderFilename, filename},
	)
}

// NewURIFailure reports a failed acquisition for a single URI.
func NewURIFailure(uri, reason string) *Message {
	return New(URIFailure,
		Header{HeaderURI, uri},
		Header{HeaderMessage, reason},
	)
}

// NewGeneralFailure reports a failure not tied to a single URI.
func NewGeneralFailure(reason string) *Message {
	return New(GeneralFailure, Header{HeaderMessage, reason})
}

// Description returns the message's status line without the trailing
// newline, e.g. "600 URI Acquire". Used for logging.
func (m *Message) Description() string {
	return strconv.Itoa(int(m.Type.Code())) + " " + m.Type.Description()
}

// Header returns the value of the first header with the given key.
func (m *Message) Header(key string) (string, error) {
	for _, h := range m.Headers {
		if h.Key == key {
			return h.Value, nil
		}
	}
	return "", &HeaderNotFoundError{Key: key}
}

// URI returns the URI header.
func (m *Message) URI() (string, error) {
	return m.Header(HeaderURI)
}

// Filename returns the Filename header.
func (m *Message) Filename() (string, error) {
	return m.Header(HeaderFilename)
}

// String renders the canonical wire form: status line, headers in stored
// order, terminating blank line.
func (m *Message) String() string {
	var b strings.Builder
	b.WriteString(m.Description())
	b.WriteByte('\n')
	for _, h := range m.Headers {
		b.WriteString(h.Key)
		b.WriteString(": ")
		b.WriteString(h.Value)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}

// Bytes returns the canonical wire form of the message.
func (m *Message) Bytes() []byte {
	return []byte(m.String())
}

// Parse consumes exactly one complete message. Grammar violations return a
// *ParseError, a code outside the protocol's taxonomy returns an
// *UnknownMessageTypeError, and any non-empty bytes after the terminating
// blank line return ErrTooMuchData.
func Parse(input []byte) (*Message, error) {
	line, rest, ok := cutLine(input)
	if !ok {
		return nil, &ParseError{Detail: "missing status line"}
	}

	digits := 0
	for digits < len(line) && line[digits] >= '0' && line[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return nil, &ParseError{Detail: "status line does not start with a numeric code"}
	}
	code, err := strconv.ParseUint(string(line[:digits]), 10, 16)
	if err != nil {
		return nil, &ParseError{Detail: "invalid message code: " + err.Error()}
	}
	t, ok := typeFromCode(uint16(code))
	if !ok {
		return nil, &UnknownMessageTypeError{Code: uint16(code)}
	}
	// The remainder of the status line is a free-text description; it is
	// not validated and not retained.

	var headers []Header
	for {
		line, rest, ok = cutLine(rest)
		if !ok {
			return nil, &ParseError{Detail: "missing terminating blank line"}
		}
		if len(line) == 0 {
			break
		}
		key, value, found := bytes.Cut(line, []byte{':'})
		if !found {
			return nil, &ParseError{Detail: "header line without colon: " + strconv.Quote(string(line))}
		}
		headers = append(headers, Header{
			Key:   string(key),
			Value: string(bytes.TrimLeft(value, " \t")),
		})
	}

	if len(rest) > 0 {
		return nil, ErrTooMuchData
	}
	return &Message{Type: t, Headers: headers}, nil
}

// cutLine splits off the first newline-terminated line, excluding the
// newline itself. ok is false when no newline remains.
func cutLine(input []byte) (line, rest []byte, ok bool) {
	i := bytes.IndexByte(input, '\n')
	if i < 0 {
		return nil, input, false
	}
	return input[:i], input[i+1:], true
}
