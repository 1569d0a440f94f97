package pool

import "viewportd/pkg/types"

// ResourceFactory creates and destroys rendering-engine resources backing
// pool slots. The engine itself is an external collaborator; the pool only
// holds the opaque handle it returns.
type ResourceFactory interface {
	// Create allocates a resource for a slot of the given type and returns
	// the opaque handle plus a memory estimate in MB.
	Create(vpType types.ViewportType) (handle any, estMB int, err error)
	// Destroy releases a previously created resource.
	Destroy(handle any) error
}

// StubFactory is an in-memory factory used when no engine is wired.
type StubFactory struct{}

type stubResource struct {
	vpType types.ViewportType
}

func (StubFactory) Create(vpType types.ViewportType) (any, int, error) {
	est := 32
	if vpType == types.ViewportVolume {
		est = 128
	}
	return &stubResource{vpType: vpType}, est, nil
}

func (StubFactory) Destroy(any) error { return nil }
