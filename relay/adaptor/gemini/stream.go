package gemini

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/Laisky/errors/v2"
)

// StreamReader iterates over an SSE stream of GenerateResponse chunks. It is
// finite and not restartable; Recv returns io.EOF once the stream is
// exhausted.
type StreamReader struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func NewStreamReader(body io.ReadCloser) *StreamReader {
	scanner := bufio.NewScanner(body)
	buffer := make([]byte, 1024*1024) // 1MB buffer
	scanner.Buffer(buffer, len(buffer))
	scanner.Split(bufio.ScanLines)
	return &StreamReader{body: body, scanner: scanner}
}

// Recv returns the next chunk of the stream. Malformed data lines are skipped
// rather than aborting the stream; only transport errors and exhaustion stop
// iteration.
func (s *StreamReader) Recv() (*GenerateResponse, error) {
	for s.scanner.Scan() {
		data := NormalizeDataLine(s.scanner.Text())
		if data == "" || data == "[DONE]" {
			continue
		}
		var chunk GenerateResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Partial or malformed unit; tolerate at chunk granularity.
			continue
		}
		return &chunk, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read stream")
	}
	return nil, io.EOF
}

func (s *StreamReader) Close() error {
	return s.body.Close()
}

// NormalizeDataLine strips the SSE "data:" prefix and surrounding whitespace.
// Non-data lines (comments, event names, blanks) normalize to "".
func NormalizeDataLine(line string) string {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "data:") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "data:"))
}
