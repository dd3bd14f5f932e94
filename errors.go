package paint

import "errors"

// Sentinel errors returned by Canvas operations. Callers test with errors.Is;
// most are wrapped with the offending index or value.
var (
	// ErrInvalidCanvas is returned by NewCanvas for non-positive dimensions
	// or a tile size that is not a power of two.
	ErrInvalidCanvas = errors.New("paint: invalid canvas geometry")

	// ErrLayerLocked is returned when drawing or transforming a locked layer.
	ErrLayerLocked = errors.New("paint: layer is locked")

	// ErrInvalidLayer is returned for a layer index outside the stack.
	ErrInvalidLayer = errors.New("paint: invalid layer index")

	// ErrBackgroundLayer is returned when an operation would remove or move
	// the background layer.
	ErrBackgroundLayer = errors.New("paint: background layer cannot be changed")

	// ErrLastLayer is returned when removing the only drawable layer.
	ErrLastLayer = errors.New("paint: cannot remove the last drawable layer")

	// ErrEmptySelection is returned when a selection is required but missing
	// or contains no pixels.
	ErrEmptySelection = errors.New("paint: empty selection")

	// ErrNothingToTransform is returned when a transform finds no source pixels.
	ErrNothingToTransform = errors.New("paint: nothing to transform")

	// ErrSingularTransform is returned for a transform that cannot be inverted.
	ErrSingularTransform = errors.New("paint: transform is not invertible")

	// ErrBufferTooSmall is returned by Composite when the destination cannot
	// hold the downsampled rectangle.
	ErrBufferTooSmall = errors.New("paint: destination buffer too small")

	// ErrInvalidStep is returned by Composite for a downsample step below 1.
	ErrInvalidStep = errors.New("paint: downsample step must be at least 1")

	// ErrStrokeEnded is returned when extending a stroke after End.
	ErrStrokeEnded = errors.New("paint: stroke already ended")

	// ErrInvalidBrush is returned by Brush.Validate and BeginStroke.
	ErrInvalidBrush = errors.New("paint: invalid brush")
)
