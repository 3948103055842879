// Package generation talks to the external generative image provider that
// renders NFT artwork. The saga treats the provider as a black box: it either
// returns image bytes or the mint aborts.
package generation

import (
	"context"
	"errors"
)

// ErrGenerationFailed is returned for every provider failure mode. The saga
// only needs to know that no artwork exists, not why; callers who care about
// the cause can read the wrapped error.
var ErrGenerationFailed = errors.New("artwork generation failed")

// StyleParams carries the creative direction for a generation call
type StyleParams struct {
	Concept    string
	Theme      string
	Attributes map[string]string
}

// Generator produces artwork bytes for a mint. Implementations must honor the
// context deadline; a slow provider aborts the saga the same way an erroring
// one does.
type Generator interface {
	Generate(ctx context.Context, params StyleParams) ([]byte, error)
}
