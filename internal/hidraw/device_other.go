//go:build !linux

package hidraw

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by every Device operation on a non-Linux GOOS;
// hidraw is a Linux kernel interface with no portable equivalent.
var ErrUnsupported = errors.New("hidraw: not supported on this platform")

type Device struct{}

func Open(path string) (*Device, error) { return nil, ErrUnsupported }

func (d *Device) Descriptor() []byte { return nil }

func (d *Device) Close() error { return ErrUnsupported }

func (d *Device) ReadLoop(ctx context.Context, onReport func([]byte)) error {
	return ErrUnsupported
}
