package hotspot

import "errors"

// Sentinel errors returned by lookups and loaders.
var (
	ErrNoRoot        = errors.New("hotspot: no root container")
	ErrUnknownMarker = errors.New("hotspot: unknown marker")
	ErrNoPanels      = errors.New("hotspot: no panels")
	ErrNoLayout      = errors.New("hotspot: no layout")
)

// Status classifies the outcome of a registry or resource lookup.
type Status uint8

const (
	StatusOK         Status = iota // value present
	StatusNotFound                 // nothing registered under the key
	StatusLoadFailed               // a resource existed but could not be loaded
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not found"
	case StatusLoadFailed:
		return "load failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a lookup. Callers decide whether a missing or
// failed value is worth logging, retrying or ignoring.
type Result[T any] struct {
	Value  T
	Status Status
	Err    error
}

// OK reports whether the lookup produced a value.
func (r Result[T]) OK() bool {
	return r.Status == StatusOK
}

// Ok wraps a found value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusOK}
}

// NotFound builds a miss.
func NotFound[T any](err error) Result[T] {
	return Result[T]{Status: StatusNotFound, Err: err}
}

// LoadFailed builds a failed load.
func LoadFailed[T any](err error) Result[T] {
	return Result[T]{Status: StatusLoadFailed, Err: err}
}
