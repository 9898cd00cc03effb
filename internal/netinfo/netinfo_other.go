//go:build !linux && !darwin && !windows

package netinfo

import "github.com/pkg/errors"

func listInterfaces() ([]Interface, error) {
	return nil, errors.New("adapter enumeration is not supported on this platform")
}
