// Package hidraw opens a Linux /dev/hidrawN device node, fetches its report
// descriptor via ioctl, and reads input reports in a loop, feeding each one
// to a caller-supplied callback.
package hidraw
