//go:build !linux

package zbd

import "github.com/pkg/errors"

// Open is only implemented on Linux; zoned block device ioctls do not
// exist elsewhere.
func Open(path string, opts Options) (Device, error) {
	return nil, errors.Errorf("zoned block devices are not supported on this platform (%s)", path)
}
