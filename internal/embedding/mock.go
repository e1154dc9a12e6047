package embedding

import (
	"context"
	"sync"

	mnemoErrors "github.com/mnemo-oss/mnemo/internal/errors"
)

// Mock is a deterministic in-process provider for tests. Texts without a
// registered vector get a length-derived placeholder; tests that care
// about similarity register exact vectors with SetVector.
type Mock struct {
	dims int

	mu      sync.Mutex
	vectors map[string][]float32
	err     error
}

// NewMock creates a mock provider producing vectors of the given size.
func NewMock(dims int) *Mock {
	return &Mock{
		dims:    dims,
		vectors: make(map[string][]float32),
	}
}

// SetVector registers the exact vector returned for text.
func (m *Mock) SetVector(text string, vec []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[text] = append([]float32(nil), vec...)
}

// Fail makes every subsequent call return err (nil restores normal
// operation). Simulates provider outage.
func (m *Mock) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// FailUnavailable makes every subsequent call fail with an
// EMBEDDING_UNAVAILABLE error.
func (m *Mock) FailUnavailable() {
	m.Fail(mnemoErrors.New(mnemoErrors.CodeEmbeddingUnavailable, "mock provider unavailable"))
}

// Name returns the provider name.
func (m *Mock) Name() string {
	return "mock"
}

// Dimensions returns the configured vector size.
func (m *Mock) Dimensions() int {
	return m.dims
}

// Embed returns the registered vector for text, or a deterministic
// placeholder derived from its length.
func (m *Mock) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if vec, ok := m.vectors[text]; ok {
		return append([]float32(nil), vec...), nil
	}

	vec := make([]float32, m.dims)
	for i := range vec {
		vec[i] = float32(len(text)) / float32(m.dims+i+1)
	}
	return vec, nil
}

// EmbedMany embeds each text in order.
func (m *Mock) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, vec)
	}
	return vecs, nil
}
