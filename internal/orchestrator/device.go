package orchestrator

import (
	"context"
	"fmt"
)

// Device abstracts the platform's audio capture capability. Acquire may
// suspend while access is granted or denied.
type Device interface {
	Acquire(ctx context.Context) (Recorder, error)
}

// Recorder accumulates captured audio for one session and finalizes it into
// an artifact exactly once.
type Recorder interface {
	Write(chunk []byte) error
	Finalize() AudioArtifact
}

// NewBufferDevice returns a Device whose recorders accumulate chunks in
// memory, each bounded by maxBytes (0 means unbounded). Chunks arrive from
// the client holding the physical microphone.
func NewBufferDevice(encoding string, maxBytes int64) Device {
	return &bufferDevice{encoding: encoding, maxBytes: maxBytes}
}

// NewUnavailableDevice returns a Device for platforms without a capture
// capability; every acquire fails with ErrDeviceUnavailable.
func NewUnavailableDevice() Device {
	return unavailableDevice{}
}

// NewDeniedDevice returns a Device that refuses access with ErrPermissionDenied.
func NewDeniedDevice() Device {
	return deniedDevice{}
}

type bufferDevice struct {
	encoding string
	maxBytes int64
}

func (d *bufferDevice) Acquire(ctx context.Context) (Recorder, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	return &bufferRecorder{encoding: d.encoding, maxBytes: d.maxBytes}, nil
}

type bufferRecorder struct {
	encoding string
	maxBytes int64
	data     []byte
}

func (r *bufferRecorder) Write(chunk []byte) error {
	if r.maxBytes > 0 && int64(len(r.data))+int64(len(chunk)) > r.maxBytes {
		return fmt.Errorf("%w: artifact exceeds %d bytes", ErrValidation, r.maxBytes)
	}
	r.data = append(r.data, chunk...)
	return nil
}

func (r *bufferRecorder) Finalize() AudioArtifact {
	data := r.data
	r.data = nil
	return AudioArtifact{Data: data, Encoding: r.encoding}
}

type unavailableDevice struct{}

func (unavailableDevice) Acquire(context.Context) (Recorder, error) {
	return nil, ErrDeviceUnavailable
}

type deniedDevice struct{}

func (deniedDevice) Acquire(context.Context) (Recorder, error) {
	return nil, ErrPermissionDenied
}
