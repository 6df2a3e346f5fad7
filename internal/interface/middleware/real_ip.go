package middleware

import (
	"fmt"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIPKey holds the resolved client address.
const RealIPKey = "real_ip"

// ParseTrustedProxies accepts bare IPs or CIDRs.
func ParseTrustedProxies(entries []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, e := range entries {
		if !strings.Contains(e, "/") {
			ip := net.ParseIP(e)
			if ip == nil {
				return nil, fmt.Errorf("trusted proxy %q is not an IP or CIDR", e)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// RealIP stores the client address under RealIPKey.
// CF-Connecting-IP and X-Forwarded-For are read only when the socket peer is
// one of trusted; otherwise the peer address is the client.
func RealIP(trusted ...*net.IPNet) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(RealIPKey, resolveIP(c, trusted))
		c.Next()
	}
}

func resolveIP(c *gin.Context, trusted []*net.IPNet) string {
	peer := net.ParseIP(c.RemoteIP())
	if peer == nil {
		return c.RemoteIP()
	}
	if !isTrusted(peer, trusted) {
		return peer.String()
	}
	if ip := net.ParseIP(strings.TrimSpace(c.GetHeader("CF-Connecting-IP"))); ip != nil {
		return ip.String()
	}
	// walk from the nearest hop; the first address we do not operate is the client
	hops := strings.Split(c.GetHeader("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		ip := net.ParseIP(strings.TrimSpace(hops[i]))
		if ip == nil {
			break
		}
		if !isTrusted(ip, trusted) {
			return ip.String()
		}
	}
	return peer.String()
}

func isTrusted(ip net.IP, trusted []*net.IPNet) bool {
	for _, n := range trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
