package provider

import (
	"fmt"
	"sort"
	"strings"
)

// Info describes the fixed calling convention of one backend
type Info struct {
	ID             ID
	DisplayName    string
	Model          string // fixed model identifier, empty when supplied by configuration
	Language       string // fixed language hint, empty when the backend does not take one
	RequiresAPIKey bool
	Local          bool
	Endpoint       *EndpointConfig // nil for the in-process placeholder
}

// EndpointConfig holds HTTP endpoint configuration
type EndpointConfig struct {
	BaseURL string // e.g., "https://api.deepgram.com" or "http://localhost:8000"
	Path    string // e.g., "/v1/listen"
}

// URL joins base and path
func (e *EndpointConfig) URL() string {
	return strings.TrimRight(e.BaseURL, "/") + e.Path
}

var registry = make(map[ID]Info)

func init() {
	Register(Info{
		ID:             OpenAI,
		DisplayName:    "OpenAI Whisper",
		Model:          "whisper-1",
		Language:       "en",
		RequiresAPIKey: true,
		Endpoint:       &EndpointConfig{BaseURL: "https://api.openai.com/v1", Path: "/audio/transcriptions"},
	})
	Register(Info{
		ID:             Groq,
		DisplayName:    "Groq Whisper",
		Model:          "whisper-large-v3",
		Language:       "ta",
		RequiresAPIKey: true,
		Endpoint:       &EndpointConfig{BaseURL: "https://api.groq.com/openai/v1", Path: "/audio/transcriptions"},
	})
	Register(Info{
		ID:             Deepgram,
		DisplayName:    "Deepgram",
		Model:          "nova-2",
		RequiresAPIKey: true,
		Endpoint:       &EndpointConfig{BaseURL: "https://api.deepgram.com", Path: "/v1/listen"},
	})
	Register(Info{
		ID:          FastWhisperAPI,
		DisplayName: "FastWhisperAPI (local)",
		Model:       "base",
		Language:    "en",
		Local:       true,
		Endpoint:    &EndpointConfig{BaseURL: "http://localhost:8000", Path: "/v1/transcriptions"},
	})
	Register(Info{
		ID:             Gemini,
		DisplayName:    "Gemini (multimodal)",
		Language:       "ta",
		RequiresAPIKey: true,
		Endpoint:       &EndpointConfig{BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai", Path: "/chat/completions"},
	})
	Register(Info{
		ID:          Local,
		DisplayName: "Local model (placeholder)",
		Local:       true,
	})
}

// Register adds a backend description to the registry
func Register(info Info) {
	registry[info.ID] = info
}

// Get returns the description of a backend and whether it is known
func Get(id ID) (Info, bool) {
	info, ok := registry[id]
	return info, ok
}

// Parse converts a name into a known ID. Only the exact lowercase names are accepted.
func Parse(name string) (ID, error) {
	id := ID(name)
	if _, ok := registry[id]; !ok {
		return "", fmt.Errorf("unsupported transcription provider: %q", name)
	}
	return id, nil
}

// List returns all registered IDs sorted by name
func List() []ID {
	ids := make([]ID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ListRequiringAPIKey returns the IDs of backends that need a credential
func ListRequiringAPIKey() []ID {
	var ids []ID
	for _, id := range List() {
		if registry[id].RequiresAPIKey {
			ids = append(ids, id)
		}
	}
	return ids
}

// ValidateAPIKey performs a cheap shape check on a key.
// It only rejects keys that cannot possibly be valid.
func ValidateAPIKey(id ID, key string) bool {
	info, ok := registry[id]
	if !ok {
		return false
	}
	if !info.RequiresAPIKey {
		return true
	}
	switch id {
	case OpenAI:
		return strings.HasPrefix(key, "sk-")
	case Groq:
		return strings.HasPrefix(key, "gsk_")
	default:
		return len(key) > 0
	}
}
