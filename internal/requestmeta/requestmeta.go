// Package requestmeta derives caller metadata from incoming HTTP requests.
// Report audit events record who asked for a report and from where.
package requestmeta

import (
	"net"
	"net/http"
	"strings"

	"github.com/avct/uasurfer"

	"github.com/hyeonlab/adlens/internal/geoip"
)

// Meta describes the device and origin of a report request.
type Meta struct {
	DeviceType string
	Browser    string
	IsBot      bool
	IP         string
	Country    string
}

// FromRequest parses the User-Agent and client address of r. The GeoIP handle
// may be nil, in which case Country stays empty.
func FromRequest(r *http.Request, g *geoip.GeoIP) Meta {
	m := Meta{}

	if ua := r.Header.Get("User-Agent"); ua != "" {
		u := uasurfer.Parse(ua)
		switch u.DeviceType {
		case uasurfer.DeviceComputer:
			m.DeviceType = "desktop"
		case uasurfer.DevicePhone:
			m.DeviceType = "mobile"
		case uasurfer.DeviceTablet:
			m.DeviceType = "tablet"
		default:
			m.DeviceType = "other"
		}
		m.Browser = u.Browser.Name.String()
		m.IsBot = u.IsBot()
	}

	m.IP = clientIP(r)
	if ip := net.ParseIP(m.IP); ip != nil {
		m.Country = g.Country(ip)
	}
	return m
}

// clientIP prefers X-Forwarded-For so proxied deployments report the real
// caller, falling back to the socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx != -1 {
			fwd = fwd[:idx]
		}
		return strings.TrimSpace(fwd)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
