//go:build linux

package hidraw

import "unsafe"

// ioctl number encoding, Linux asm-generic/ioctl.h layout (64-bit):
//
//	bits 0-7:   command number (nr)
//	bits 8-15:  ioctl type (type)
//	bits 16-29: argument size (size)
//	bits 30-31: direction (dir)
const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2
)

const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return (dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift)
}

func ior(typ, nr, size uintptr) uintptr { return ioc(iocRead, typ, nr, size) }

// hidrawType is the ioctl type character ('H') Linux assigns to hidraw.
const hidrawType = 'H'

const (
	hidDescSize = 4096 // HID_MAX_DESCRIPTOR_SIZE

	cmdGetRDescSize = 0x01
	cmdGetRDesc     = 0x02
)

// hidrawReportDescriptor mirrors struct hidraw_report_descriptor from
// linux/hidraw.h: a fixed-size value buffer with a leading size field.
type hidrawReportDescriptor struct {
	size  uint32
	value [hidDescSize]byte
}

var (
	ioctlHIDIOCGRDESCSIZE = ior(hidrawType, cmdGetRDescSize, 4)
	ioctlHIDIOCGRDESC      = ior(hidrawType, cmdGetRDesc, unsafe.Sizeof(hidrawReportDescriptor{}))
)
