package message

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageTypeCodes(t *testing.T) {
	assert.Equal(t, uint16(100), Capabilities.Code())
	assert.Equal(t, uint16(101), Log.Code())
	assert.Equal(t, uint16(102), Status.Code())
	assert.Equal(t, uint16(200), URIStart.Code())
	assert.Equal(t, uint16(201), URIDone.Code())
	assert.Equal(t, uint16(400), URIFailure.Code())
	assert.Equal(t, uint16(401), GeneralFailure.Code())
	assert.Equal(t, uint16(600), URIAcquire.Code())
	assert.Equal(t, uint16(601), Configuration.Code())
}

func TestMessageTypeDescriptions(t *testing.T) {
	assert.Equal(t, "Capabilities", Capabilities.Description())
	assert.Equal(t, "Log", Log.Description())
	assert.Equal(t, "Status", Status.Description())
	assert.Equal(t, "URI Start", URIStart.Description())
	assert.Equal(t, "URI Done", URIDone.Description())
	assert.Equal(t, "URI Failure", URIFailure.Description())
	assert.Equal(t, "General Failure", GeneralFailure.Description())
	assert.Equal(t, "URI Acquire", URIAcquire.Description())
	assert.Equal(t, "Configuration", Configuration.Description())
}

func TestCodeDescriptionBijection(t *testing.T) {
	types := []Type{
		Capabilities, Log, Status, URIStart, URIDone,
		URIFailure, GeneralFailure, URIAcquire, Configuration,
	}

	codes := make(map[uint16]Type)
	descriptions := make(map[string]Type)
	for _, typ := range types {
		_, seen := codes[typ.Code()]
		assert.False(t, seen, "duplicate code %d", typ.Code())
		codes[typ.Code()] = typ

		_, seen = descriptions[typ.Description()]
		assert.False(t, seen, "duplicate description %q", typ.Description())
		descriptions[typ.Description()] = typ

		parsed, ok := typeFromCode(typ.Code())
		require.True(t, ok)
		assert.Equal(t, typ, parsed)
	}
}

func TestParse_StatusLineVariants(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Type
	}{
		{
			name:     "Standard description",
			input:    "600 URI Acquire\n\n",
			expected: URIAcquire,
		},
		{
			name:     "Description is free text",
			input:    "600 anything at all\n\n",
			expected: URIAcquire,
		},
		{
			name:     "No description",
			input:    "601\n\n",
			expected: Configuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, msg.Type)
			assert.Empty(t, msg.Headers)
		})
	}
}

func TestParse_Headers(t *testing.T) {
	input := "600 URI Acquire\n" +
		"URI: https://account.blob.core.windows.net/container/object\n" +
		"Filename: /tmp/object\n" +
		"\n"

	msg, err := Parse([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, URIAcquire, msg.Type)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, Header{"URI", "https://account.blob.core.windows.net/container/object"}, msg.Headers[0])
	assert.Equal(t, Header{"Filename", "/tmp/object"}, msg.Headers[1])
}

func TestParse_HeaderValueSpacing(t *testing.T) {
	msg, err := Parse([]byte("102 Status\nMessage:no space\nOther:   padded\n\n"))
	require.NoError(t, err)
	assert.Equal(t, Header{"Message", "no space"}, msg.Headers[0])
	assert.Equal(t, Header{"Other", "padded"}, msg.Headers[1])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Empty input", ""},
		{"No numeric code", "hello\n\n"},
		{"Header without colon", "100 Capabilities\nNo header line\n\n"},
		{"Missing terminating blank line", "100 Capabilities\nKey: Value\n"},
		{"Status line without newline", "100 Capabilities"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestParse_UnknownCode(t *testing.T) {
	_, err := Parse([]byte("999 Unknown\n\n"))

	var unknownErr *UnknownMessageTypeError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, uint16(999), unknownErr.Code)
}

func TestParse_TooMuchData(t *testing.T) {
	input := "100 Capabilities\nKey: Value\n\ntoo much data"

	_, err := Parse([]byte(input))
	assert.True(t, errors.Is(err, ErrTooMuchData))
}

func TestHeaderLookup_FirstMatchWins(t *testing.T) {
	msg := New(Status,
		Header{"Message", "first"},
		Header{"Message", "second"},
	)

	value, err := msg.Header("Message")
	require.NoError(t, err)
	assert.Equal(t, "first", value)
}

func TestHeaderLookup_NotFound(t *testing.T) {
	msg := New(Status)

	_, err := msg.Header("Message")
	var notFound *HeaderNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Message", notFound.Key)
}

func TestSerialize(t *testing.T) {
	msg := New(Capabilities, Header{"Key", "Value"})

	assert.Equal(t, "100 Capabilities\nKey: Value\n\n", msg.String())
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  *Message
	}{
		{"Capabilities", NewCapabilities("0.1.0")},
		{"Status", NewStatus("Waiting for headers")},
		{"Log", NewLog("something happened")},
		{"URI Start", NewURIStart("https://example.com/a", 1234, "2021-01-01T00:00:00Z")},
		{"URI Done", NewURIDone("https://example.com/a", "/tmp/a")},
		{"URI Failure", NewURIFailure("https://example.com/a", "Blob does not exist")},
		{"General Failure", NewGeneralFailure("Error: it broke")},
		{"No headers", New(Configuration)},
		{"Duplicate keys", New(Status, Header{"Message", "a"}, Header{"Message", "b"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := Parse(tt.msg.Bytes())
			require.NoError(t, err)
			// Parse leaves Headers nil for header-less messages.
			if len(tt.msg.Headers) == 0 {
				assert.Empty(t, parsed.Headers)
				assert.Equal(t, tt.msg.Type, parsed.Type)
				return
			}
			assert.Equal(t, tt.msg, parsed)
		})
	}
}

func TestConstructors(t *testing.T) {
	start := NewURIStart("https://example.com/a", 42, "2021-01-01T00:00:00Z")
	assert.Equal(t, []Header{
		{"URI", "https://example.com/a"},
		{"Size", "42"},
		{"Last-Modified", "2021-01-01T00:00:00Z"},
	}, start.Headers)

	caps := NewCapabilities("1.2.3")
	assert.Equal(t, "100 Capabilities\nVersion: 1.2.3\nSend-Config: true\nSingle-Instance: true\n\n", caps.String())
}

func TestDescription(t *testing.T) {
	assert.Equal(t, "100 Capabilities", New(Capabilities).Description())
	assert.Equal(t, "600 URI Acquire", New(URIAcquire).Description())
}
