package normalisers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
	"github.com/docuchat-labs/docuchat/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches normalisation by media type. When several
// normalisers claim a type, the highest priority wins; types nothing
// claims fall back to the lowest-priority normaliser (by convention the
// plain text one, priority 1-9).
type Registry struct {
	byType   map[string]driven.Normaliser
	fallback driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[string]driven.Normaliser),
	}
}

// Register adds a normaliser to the registry.
func (r *Registry) Register(n driven.Normaliser) {
	for _, mt := range n.SupportedMediaTypes() {
		existing, ok := r.byType[mt]
		if !ok || n.Priority() > existing.Priority() {
			r.byType[mt] = n
		}
	}
	if n.Priority() < 10 {
		if r.fallback == nil || n.Priority() > r.fallback.Priority() {
			r.fallback = n
		}
	}
}

// Normalise extracts text using the best matching normaliser.
func (r *Registry) Normalise(ctx context.Context, mediaType string, content []byte) (string, error) {
	n, ok := r.byType[baseMediaType(mediaType)]
	if !ok {
		n = r.fallback
	}
	if n == nil {
		return "", fmt.Errorf("%w: no normaliser for media type %q", domain.ErrInvalidInput, mediaType)
	}
	return n.Normalise(ctx, content)
}

// SupportedMediaTypes returns all media types that can be normalised.
func (r *Registry) SupportedMediaTypes() []string {
	types := make([]string, 0, len(r.byType))
	for mt := range r.byType {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// baseMediaType strips parameters like "; charset=utf-8".
func baseMediaType(mediaType string) string {
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
