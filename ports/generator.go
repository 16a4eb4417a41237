package ports

import "context"

// Generator is the black-box text generation contract. Implementations
// must respect ctx cancellation and surface transport failures as errors;
// they never repair malformed content, that is the coercer's job.
type Generator interface {
	Generate(ctx context.Context, systemInstructions, prompt string) (string, error)
}
