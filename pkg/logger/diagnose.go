package logger

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

// ConnDiagnostic holds the fields recorded for a failed store connection.
type ConnDiagnostic struct {
	Errno    int
	Code     string
	Syscall  string
	Hostname string
}

var errnoNames = map[syscall.Errno]string{
	syscall.ECONNREFUSED: "ECONNREFUSED",
	syscall.ECONNRESET:   "ECONNRESET",
	syscall.ECONNABORTED: "ECONNABORTED",
	syscall.ETIMEDOUT:    "ETIMEDOUT",
	syscall.EHOSTUNREACH: "EHOSTUNREACH",
	syscall.ENETUNREACH:  "ENETUNREACH",
	syscall.EPIPE:        "EPIPE",
	syscall.EADDRINUSE:   "EADDRINUSE",
}

type sqlStater interface {
	SQLState() string
}

// Diagnose walks the chain of err and extracts what the network and OS
// errors inside it say about the failure. fallbackHost is reported when no
// error names the remote host.
func Diagnose(err error, fallbackHost string) ConnDiagnostic {
	d := ConnDiagnostic{Hostname: fallbackHost}
	if err == nil {
		return d
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		d.Errno = int(errno)
		d.Code = errnoNames[errno]
	}

	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) {
		d.Syscall = sysErr.Syscall
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		d.Hostname = dnsErr.Name
		if dnsErr.IsNotFound {
			d.Code = "ENOTFOUND"
		}
		if d.Syscall == "" {
			d.Syscall = "getaddrinfo"
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if d.Syscall == "" {
			d.Syscall = opErr.Op
		}
		if opErr.Addr != nil && dnsErr == nil {
			d.Hostname = hostOnly(opErr.Addr.String())
		}
	}

	var state sqlStater
	if d.Code == "" && errors.As(err, &state) {
		d.Code = state.SQLState()
	}

	if d.Code == "" {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			d.Code = "ETIMEDOUT"
		}
	}
	return d
}

// String renders the diagnostic as "errno: code\tsyscall\thostname".
func (d ConnDiagnostic) String() string {
	return fmt.Sprintf("%d: %s\t%s\t%s", d.Errno, d.Code, d.Syscall, d.Hostname)
}

// LogConnError writes one connection failure to l.
func (l *Log) LogConnError(err error, fallbackHost string) ConnDiagnostic {
	d := Diagnose(err, fallbackHost)
	l.Logger.Error().
		Int("errno", d.Errno).
		Str("code", d.Code).
		Str("syscall", d.Syscall).
		Str("hostname", d.Hostname).
		Err(err).
		Msg(d.String())
	return d
}

func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
