package pkg

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

var ErrNoClientAddr = errors.New("no client address")

// IPIsLocal reports whether addr (an ip, optionally with a port) is a loopback address or a
// docker bridge gateway (172.x.0.1), i.e. a request made on the machine itself.
func IPIsLocal(addr string) bool {
	ip := parseIP(addr)
	if ip == nil {
		return false
	}
	if ip.Equal(net.IPv4(127, 0, 0, 1)) || ip.Equal(net.IPv6loopback) {
		return true
	}
	ip4 := ip.To4()
	return ip4 != nil && ip4[0] == 172 && ip4[2] == 0 && ip4[3] == 1
}

func parseIP(addr string) net.IP {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return net.ParseIP(addr)
}

// ReadUserIP returns the client address of r: X-Real-Ip, then the first X-Forwarded-For hop,
// then the remote address. Local requests resolve to "localhost".
func ReadUserIP(r *http.Request) (string, error) {
	forwardedFor, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")

	for _, candidate := range []string{
		r.Header.Get("X-Real-Ip"),
		forwardedFor,
		r.RemoteAddr,
	} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if IPIsLocal(candidate) {
			return "localhost", nil
		}
		ip := parseIP(candidate)
		if ip == nil {
			return "", fmt.Errorf("ip addr %s is invalid", candidate)
		}
		return ip.String(), nil
	}

	return "", ErrNoClientAddr
}
