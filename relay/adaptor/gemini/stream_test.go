package gemini

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeDataLine(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"data line", `data: {"x":1}`, `{"x":1}`},
		{"no space after prefix", `data:{"x":1}`, `{"x":1}`},
		{"surrounding whitespace", `  data: {"x":1}  `, `{"x":1}`},
		{"blank line", "", ""},
		{"comment line", ": keepalive", ""},
		{"event line", "event: message", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NormalizeDataLine(tc.in))
		})
	}
}

func TestStreamReaderRecv(t *testing.T) {
	t.Run("yields chunks and then EOF", func(t *testing.T) {
		payload := "data: {\"candidates\": [{\"content\": {\"parts\": [{\"text\": \"a\"}]}}]}\n\n" +
			"data: {\"candidates\": [{\"content\": {\"parts\": [{\"text\": \"b\"}]}}]}\n\n" +
			"data: [DONE]\n"
		reader := NewStreamReader(io.NopCloser(strings.NewReader(payload)))

		first, err := reader.Recv()
		require.NoError(t, err)
		require.Equal(t, "a", first.Text())

		second, err := reader.Recv()
		require.NoError(t, err)
		require.Equal(t, "b", second.Text())

		_, err = reader.Recv()
		require.Equal(t, io.EOF, err)
	})

	t.Run("skips malformed data lines", func(t *testing.T) {
		payload := "data: {not json}\n\n" +
			"data: {\"candidates\": [{\"content\": {\"parts\": [{\"text\": \"ok\"}]}}]}\n\n"
		reader := NewStreamReader(io.NopCloser(strings.NewReader(payload)))

		chunk, err := reader.Recv()
		require.NoError(t, err)
		require.Equal(t, "ok", chunk.Text())

		_, err = reader.Recv()
		require.Equal(t, io.EOF, err)
	})

	t.Run("empty stream is immediate EOF", func(t *testing.T) {
		reader := NewStreamReader(io.NopCloser(strings.NewReader("")))
		_, err := reader.Recv()
		require.Equal(t, io.EOF, err)
	})
}
