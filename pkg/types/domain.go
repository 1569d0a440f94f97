package types

// Series describes one loadable image series discovered by the registry.
type Series struct {
	// Stable identifier for the series.
	// example: series-1.2.840.113619.2.5
	ID string `json:"id" yaml:"id" example:"series-1.2.840.113619.2.5"`
	// Identifier of the parent study.
	// example: study-1.2.840.113619.2
	StudyID string `json:"study_id,omitempty" yaml:"study_id" example:"study-1.2.840.113619.2"`
	// Imaging modality (CT, MR, ...).
	// example: CT
	Modality string `json:"modality,omitempty" yaml:"modality" example:"CT"`
	// Human-friendly description.
	// example: CHEST W/O CONTRAST
	Description string `json:"description,omitempty" yaml:"description" example:"CHEST W/O CONTRAST"`
	// Ordered list of images in acquisition order.
	Images []ImageRef `json:"images" yaml:"images"`
}

// ImageRef is one image in a series with its estimated transfer size.
type ImageRef struct {
	// Stable image identifier.
	// example: img-001
	ID string `json:"id" yaml:"id" example:"img-001"`
	// Estimated size in bytes, from the metadata layer.
	// example: 524288
	SizeBytes int64 `json:"size_bytes" yaml:"size_bytes" example:"524288"`
}

// LoadStrategy selects how a session's chunks are prioritized.
type LoadStrategy string

const (
	StrategySequential LoadStrategy = "sequential"
	StrategyAdaptive   LoadStrategy = "adaptive"
	StrategyPriority   LoadStrategy = "priority-based"
	StrategyPredictive LoadStrategy = "predictive"
)

// Valid reports whether s names a known strategy.
func (s LoadStrategy) Valid() bool {
	switch s {
	case StrategySequential, StrategyAdaptive, StrategyPriority, StrategyPredictive:
		return true
	}
	return false
}

// ViewportType distinguishes the two kinds of rendering surfaces a pool slot
// can be tagged for.
type ViewportType string

const (
	ViewportStack  ViewportType = "stack"
	ViewportVolume ViewportType = "volume"
)

// Valid reports whether t names a known viewport type.
func (t ViewportType) Valid() bool {
	return t == ViewportStack || t == ViewportVolume
}
