package useragent

import (
	"net"
	"net/http"
	"strings"
)

// checked in order, Edge and Chrome both advertise Safari
var browsers = []struct{ token, name string }{
	{"Edg/", "Edge"},
	{"Firefox/", "Firefox"},
	{"Chrome/", "Chrome"},
	{"Safari/", "Safari"},
}

var systems = []struct{ token, name string }{
	{"Android", "Android"},
	{"iPhone", "iOS"},
	{"iPad", "iOS"},
	{"Windows", "Windows"},
	{"Mac OS X", "macOS"},
	{"Linux", "Linux"},
}

// ExtractDeviceInfo turns the User-Agent header into a short label such as
// "Firefox 128 on Linux". Non-browser clients (curl, the terminal client)
// are reported by their product token.
func ExtractDeviceInfo(r *http.Request) string {
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		return "Unknown Device"
	}

	browser, version := "", ""
	for _, b := range browsers {
		if idx := strings.Index(ua, b.token); idx != -1 {
			browser = b.name
			version = majorVersion(ua[idx+len(b.token):])
			break
		}
	}
	if browser == "" {
		product, _, _ := strings.Cut(ua, " ")
		return product
	}

	os := "Unknown OS"
	for _, s := range systems {
		if strings.Contains(ua, s.token) {
			os = s.name
			break
		}
	}

	if version != "" {
		return browser + " " + version + " on " + os
	}
	return browser + " on " + os
}

func majorVersion(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// ExtractIPAddress gets the client address, preferring the first
// X-Forwarded-For hop and then X-Real-IP when running behind a proxy
func ExtractIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
