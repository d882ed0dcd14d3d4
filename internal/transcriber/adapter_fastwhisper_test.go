package transcriber

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fastWhisperCall struct {
	auth   string
	fields map[string][]string
	file   []byte
}

func mockFastWhisperServer(t *testing.T, status int, body string) (*httptest.Server, *fastWhisperCall) {
	t.Helper()
	call := &fastWhisperCall{}
	mux := http.NewServeMux()
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		call.auth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		} else {
			call.fields = r.MultipartForm.Value
		}
		if f, _, err := r.FormFile("file"); err == nil {
			call.file, _ = io.ReadAll(f)
			f.Close()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, call
}

func TestFastWhisperAdapter_Response(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		want     string
		wantKind Kind
	}{
		{name: "text present", body: `{"text":"hello"}`, want: "hello"},
		{name: "text missing", body: `{"segments":[]}`, want: NoTextFallback},
		{name: "text null", body: `{"text":null}`, want: NoTextFallback},
		{name: "empty text is kept", body: `{"text":""}`, want: ""},
		{name: "not json", body: `Internal error`, wantKind: KindMalformedResponse},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server, _ := mockFastWhisperServer(t, http.StatusOK, tc.body)
			adapter := NewFastWhisperAdapter(endpointFor(server.URL, "/v1/transcriptions"), "dummy_api_key", nil)
			path := writeAudio(t, "sample.wav", fakeWAV)

			text, err := adapter.Transcribe(context.Background(), Request{AudioPath: path})
			if tc.wantKind != KindUnknown {
				assertKind(t, err, tc.wantKind)
				return
			}
			if err != nil {
				t.Fatalf("Transcribe() error = %v", err)
			}
			if text != tc.want {
				t.Errorf("text = %q, want %q", text, tc.want)
			}
		})
	}
}

func TestFastWhisperAdapter_FormFields(t *testing.T) {
	server, call := mockFastWhisperServer(t, http.StatusOK, `{"text":"ok"}`)
	adapter := NewFastWhisperAdapter(endpointFor(server.URL, "/v1/transcriptions"), "dummy_api_key", nil)
	path := writeAudio(t, "sample.wav", fakeWAV)

	if _, err := adapter.Transcribe(context.Background(), Request{AudioPath: path}); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if call.auth != "Bearer dummy_api_key" {
		t.Errorf("Authorization = %q", call.auth)
	}
	want := map[string]string{"model": "base", "language": "en", "vad_filter": "true"}
	for k, v := range want {
		if got := call.fields[k]; len(got) != 1 || got[0] != v {
			t.Errorf("field %s = %v, want %q", k, got, v)
		}
	}
	if _, ok := call.fields["initial_prompt"]; ok {
		t.Error("initial_prompt should be omitted when empty")
	}
	if string(call.file) != string(fakeWAV) {
		t.Error("uploaded file does not match the audio")
	}
}

func TestFastWhisperAdapter_InitialPrompt(t *testing.T) {
	server, call := mockFastWhisperServer(t, http.StatusOK, `{"text":"ok"}`)
	adapter := NewFastWhisperAdapter(endpointFor(server.URL, "/v1/transcriptions"), "t", nil).
		WithInitialPrompt("Kubernetes, Tamil")
	path := writeAudio(t, "sample.wav", fakeWAV)

	if _, err := adapter.Transcribe(context.Background(), Request{AudioPath: path, Language: "it"}); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if got := call.fields["initial_prompt"]; len(got) != 1 || got[0] != "Kubernetes, Tamil" {
		t.Errorf("initial_prompt = %v", got)
	}
	if got := call.fields["language"]; len(got) != 1 || got[0] != "it" {
		t.Errorf("language = %v, want the request hint", got)
	}
}

func TestFastWhisperAdapter_StatusError(t *testing.T) {
	server, _ := mockFastWhisperServer(t, http.StatusInternalServerError, `{"detail":"boom"}`)
	adapter := NewFastWhisperAdapter(endpointFor(server.URL, "/v1/transcriptions"), "t", nil)
	path := writeAudio(t, "sample.wav", fakeWAV)

	_, err := adapter.Transcribe(context.Background(), Request{AudioPath: path})
	assertKind(t, err, KindBackend)
}

func TestFastWhisperAdapter_MissingFile(t *testing.T) {
	adapter := NewFastWhisperAdapter(endpointFor("http://127.0.0.1:1", "/v1/transcriptions"), "t", nil)

	_, err := adapter.Transcribe(context.Background(), Request{AudioPath: ""})
	assertKind(t, err, KindInvalidAudio)
}
