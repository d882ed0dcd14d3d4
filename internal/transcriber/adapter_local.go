package transcriber

import "context"

// LocalModelAdapter stands in for an embedded speech model. It performs no I/O.
type LocalModelAdapter struct{}

func NewLocalModelAdapter() *LocalModelAdapter {
	return &LocalModelAdapter{}
}

func (a *LocalModelAdapter) Transcribe(ctx context.Context, req Request) (string, error) {
	return LocalModelText, nil
}
