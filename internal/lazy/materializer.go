package lazy

import "context"

// Materializer is the rendering-engine hook that actually builds and tears
// down viewport resources. The engine is an external collaborator; this layer
// only sequences the calls.
type Materializer interface {
	// Materialize prepares the viewport identified by id on the given
	// surface and returns an engine-side resource id.
	Materialize(ctx context.Context, id string, surface any) (engineID string, err error)
	// Release frees the engine-side resource created by Materialize.
	Release(id, engineID string) error
}

// StubMaterializer is an in-memory materializer used when no engine is wired.
type StubMaterializer struct{}

func (StubMaterializer) Materialize(_ context.Context, id string, _ any) (string, error) {
	return "engine-" + id, nil
}

func (StubMaterializer) Release(string, string) error { return nil }
