package main

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAOI is returned for a malformed or degenerate bounding box.
	ErrInvalidAOI = errors.New("invalid aoi")
	// ErrInvalidRequest is returned for zoom levels or steps out of range.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrDegenerateGrid is returned when a height grid is too small to mesh.
	ErrDegenerateGrid = errors.New("height grid must be at least 2x2")
)

// TileFetchError 瓦片获取失败
type TileFetchError struct {
	Kind       Kind
	X, Y, Z    uint32
	URL        string
	StatusCode int
	Cause      error
}

func (e *TileFetchError) Error() string {
	msg := fmt.Sprintf("fetch %s tile(z:%d, x:%d, y:%d)", e.Kind, e.Z, e.X, e.Y)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status code %d", e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TileFetchError) Unwrap() error { return e.Cause }

// DecodeError means the elevation mosaic could not be sampled.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "decode elevation: " + e.Reason
}
