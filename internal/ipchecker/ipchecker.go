// Package ipchecker resolves the client address of a request and tells
// whether it falls inside the configured trusted subnet. The internal
// stats endpoint is gated on it.
package ipchecker

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// IPChecker answers whether an address belongs to the trusted subnet.
// A zero subnet means the gate is closed for everyone.
type IPChecker struct {
	trustedSubnet *net.IPNet
}

// New parses trustedSubnet as CIDR ("192.168.1.0/24"). The empty
// string yields a checker that rejects every address and reports
// IsTrustedSubnetEmpty.
func New(trustedSubnet string) (*IPChecker, error) {
	if trustedSubnet == "" {
		return &IPChecker{}, nil
	}

	_, parsedNet, err := net.ParseCIDR(trustedSubnet)
	if err != nil {
		return nil, fmt.Errorf("parsing the trusted subnet %q: %w", trustedSubnet, err)
	}

	return &IPChecker{trustedSubnet: parsedNet}, nil
}

// Check reports whether clientIP falls inside the trusted subnet.
func (checker *IPChecker) Check(clientIP net.IP) bool {
	return checker.trustedSubnet != nil && checker.trustedSubnet.Contains(clientIP)
}

// IsTrustedSubnetEmpty reports whether no subnet was configured.
func (checker *IPChecker) IsTrustedSubnetEmpty() bool {
	return checker.trustedSubnet == nil
}

// GetClientIP resolves the client address, preferring the proxy headers
// X-Real-IP then X-Forwarded-For (first hop) over RemoteAddr.
func (checker *IPChecker) GetClientIP(request *http.Request) (net.IP, error) {
	if ip := net.ParseIP(request.Header.Get("X-Real-IP")); ip != nil {
		return ip, nil
	}

	if forwarded := request.Header.Get("X-Forwarded-For"); forwarded != "" {
		firstHop := strings.TrimSpace(strings.Split(forwarded, ",")[0])

		return net.ParseIP(firstHop), nil
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return nil, fmt.Errorf("splitting the remote address %q: %w", request.RemoteAddr, err)
	}

	return net.ParseIP(host), nil
}
