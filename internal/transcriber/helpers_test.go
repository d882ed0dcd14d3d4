package transcriber

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leonardotrapani/voicescribe/internal/provider"
)

// fakeWAV is enough of a RIFF header for content sniffing
var fakeWAV = append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 64)...)

func writeAudio(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func endpointFor(baseURL, path string) *provider.EndpointConfig {
	return &provider.EndpointConfig{BaseURL: baseURL, Path: path}
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %q, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("KindOf(err) = %q, want %q (err: %v)", got, want, err)
	}
}
