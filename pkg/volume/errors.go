package volume

import "fmt"

// ShapeError reports a rank or shape mismatch: a non-3D/4D input tensor, a
// geometry anchored to a different baseshape, or a parameter vector whose
// length does not match the spatial rank.
type ShapeError struct {
	msg string
}

func (e *ShapeError) Error() string { return e.msg }

func shapeErrorf(format string, args ...interface{}) error {
	return &ShapeError{msg: fmt.Sprintf(format, args...)}
}

// InvalidCropError reports a cropping request that cannot produce a valid
// volume: a selection that collapses a spatial axis, an empty crop region, or a
// nonzero crop of an all-zero volume.
type InvalidCropError struct {
	msg string
}

func (e *InvalidCropError) Error() string { return e.msg }

func invalidCropErrorf(format string, args ...interface{}) error {
	return &InvalidCropError{msg: fmt.Sprintf(format, args...)}
}

// DomainError reports an argument outside its valid domain: a quantile
// outside [0, 1], an unsupported padding-mode, or an unsupported cropping
// argument type.
type DomainError struct {
	msg string
}

func (e *DomainError) Error() string { return e.msg }

func domainErrorf(format string, args ...interface{}) error {
	return &DomainError{msg: fmt.Sprintf(format, args...)}
}

// PreconditionError reports an invalid operation combination, such as
// negating a transform that does not resample.
type PreconditionError struct {
	msg string
}

func (e *PreconditionError) Error() string { return e.msg }

func preconditionErrorf(format string, args ...interface{}) error {
	return &PreconditionError{msg: fmt.Sprintf(format, args...)}
}
