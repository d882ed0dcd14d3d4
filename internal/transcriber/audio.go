package transcriber

import (
	"fmt"
	"net/http"
	"os"

	"github.com/leonardotrapani/voicescribe/internal/provider"
)

// openAudio opens the payload for streaming uploads. The caller closes the file.
func openAudio(id provider.ID, path string) (*os.File, error) {
	if path == "" {
		return nil, newError(KindInvalidAudio, id, fmt.Errorf("no audio file given"))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(KindInvalidAudio, id, fmt.Errorf("open audio: %w", err))
	}
	return f, nil
}

// readAudio loads the whole payload into memory
func readAudio(id provider.ID, path string) ([]byte, error) {
	if path == "" {
		return nil, newError(KindInvalidAudio, id, fmt.Errorf("no audio file given"))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(KindInvalidAudio, id, fmt.Errorf("read audio: %w", err))
	}
	return data, nil
}

// audioContentType sniffs the payload, falling back to a generic audio type
func audioContentType(data []byte) string {
	ct := http.DetectContentType(data)
	if ct == "application/octet-stream" {
		return "audio/*"
	}
	return ct
}
