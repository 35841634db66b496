package ai

import "context"

// Completer port for a chat-completion model. Implementations must
// honour ctx deadlines and surface failures as errors, never panics.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
