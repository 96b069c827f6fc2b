// Package netx resolves the listen/dial addresses used by the host channel.
//
// An address is either "unix://<path>" for a unix domain socket or a plain
// "host:port" (optionally prefixed with "tcp://") for TCP.
package netx

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

const (
	unixScheme = "unix://"
	tcpScheme  = "tcp://"
)

var (
	ErrEmptyAddress = errors.New("empty address")
	ErrNotSocket    = errors.New("path exists and is not a socket")
)

// Parse splits addr into a network name and a network address.
func Parse(addr string) (network, address string, err error) {
	switch {
	case addr == "":
		return "", "", ErrEmptyAddress
	case strings.HasPrefix(addr, unixScheme):
		path := strings.TrimPrefix(addr, unixScheme)
		if path == "" {
			return "", "", fmt.Errorf("%w: unix socket path", ErrEmptyAddress)
		}
		return "unix", path, nil
	case strings.HasPrefix(addr, tcpScheme):
		return "tcp", strings.TrimPrefix(addr, tcpScheme), nil
	default:
		return "tcp", addr, nil
	}
}

// UnixAddr builds a unix:// address for path.
func UnixAddr(path string) string {
	return unixScheme + path
}

// Listen opens a listener for addr. A stale unix socket file left behind by a
// previous run is removed first, and the new socket is restricted to the
// owner.
func Listen(addr string) (net.Listener, error) {
	network, address, err := Parse(addr)
	if err != nil {
		return nil, err
	}

	if network == "unix" {
		if err := removeStaleSocket(address); err != nil {
			return nil, err
		}
	}

	l, err := net.Listen(network, address)
	if err != nil {
		return nil, err
	}

	if network == "unix" {
		if err := os.Chmod(address, 0o600); err != nil {
			l.Close()
			return nil, fmt.Errorf("chmod socket: %w", err)
		}
	}
	return l, nil
}

// removeStaleSocket deletes path only when it is a unix socket. Any other
// file is left alone and reported.
func removeStaleSocket(path string) error {
	fi, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat socket path: %w", err)
	}
	if fi.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("%w: %s", ErrNotSocket, path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	return nil
}

// DialTarget converts addr into a gRPC dial target.
func DialTarget(addr string) (string, error) {
	network, address, err := Parse(addr)
	if err != nil {
		return "", err
	}
	if network == "unix" {
		return "unix://" + address, nil
	}
	return "passthrough:///" + address, nil
}
