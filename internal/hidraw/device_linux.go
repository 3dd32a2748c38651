//go:build linux

package hidraw

import (
	"context"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// maxReportSize is large enough for any pointing/keyboard/consumer input
// report this bridge handles; oversized reads are truncated, not split.
const maxReportSize = 64

// Device is an open /dev/hidrawN node with its report descriptor already
// fetched.
type Device struct {
	fd         int
	path       string
	descriptor []byte
}

// Open opens path, issues HIDIOCGRDESCSIZE then HIDIOCGRDESC once, and
// returns a Device ready to read input reports.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("hidraw: open %s: %w", path, err)
	}

	size, err := ioctlGetDescSize(fd)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("hidraw: get descriptor size: %w", err)
	}

	desc, err := ioctlGetDesc(fd, size)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("hidraw: get descriptor: %w", err)
	}

	return &Device{fd: fd, path: path, descriptor: desc}, nil
}

// Descriptor returns the device's raw HID report descriptor bytes, fetched
// once at Open.
func (d *Device) Descriptor() []byte { return d.descriptor }

// Close releases the underlying file descriptor.
func (d *Device) Close() error { return unix.Close(d.fd) }

// ReadLoop reads input reports until ctx is canceled or the device errors,
// calling onReport with each one. It runs entirely on the calling
// goroutine and never touches a Sink.
func (d *Device) ReadLoop(ctx context.Context, onReport func([]byte)) error {
	buf := make([]byte, maxReportSize)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := unix.Read(d.fd, buf)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("hidraw: read %s: %w", d.path, err)
		}
		if n == 0 {
			continue
		}
		report := make([]byte, n)
		copy(report, buf[:n])
		onReport(report)
	}
}

func ioctlGetDescSize(fd int) (int, error) {
	var size int32
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), ioctlHIDIOCGRDESCSIZE, uintptr(unsafe.Pointer(&size)))
	if errno != 0 {
		return 0, errno
	}
	return int(size), nil
}

func ioctlGetDesc(fd int, size int) ([]byte, error) {
	var rd hidrawReportDescriptor
	rd.size = uint32(size)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), ioctlHIDIOCGRDESC, uintptr(unsafe.Pointer(&rd)))
	if errno != 0 {
		return nil, errno
	}
	if size > len(rd.value) {
		size = len(rd.value)
	}
	out := make([]byte, size)
	copy(out, rd.value[:size])
	return out, nil
}
