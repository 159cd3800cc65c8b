package collect

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/ygrebnov/errorc"
)

// HostAndPort is a host with an optional port. The host is not validated; it
// may be a name, an IPv4 address or an IPv6 address.
type HostAndPort struct {
	host                 string
	port                 int
	hasPort              bool
	hasBracketlessColons bool
}

func invalidHostPort(input, reason string) error {
	return errorc.With(ErrInvalidHostPort,
		errorc.String(ErrorFieldInput, input),
		errorc.String(ErrorFieldValueType, reason))
}

// ParseHostAndPort parses "host", "host:port", "[v6]", "[v6]:port" or a bare
// IPv6 literal without port.
func ParseHostAndPort(s string) (HostAndPort, error) {
	var host, portText string
	bracketless := false
	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return HostAndPort{}, invalidHostPort(s, "missing ']'")
		}
		host = s[1:end]
		rest := s[end+1:]
		switch {
		case rest == "":
		case rest[0] == ':':
			portText = rest[1:]
		default:
			return HostAndPort{}, invalidHostPort(s, "only a colon may follow a close bracket")
		}
	} else {
		colon := strings.IndexByte(s, ':')
		if colon >= 0 && strings.IndexByte(s[colon+1:], ':') < 0 {
			host, portText = s[:colon], s[colon+1:]
		} else {
			host = s
			bracketless = colon >= 0
		}
	}
	hp := HostAndPort{host: host, hasBracketlessColons: bracketless}
	if portText != "" {
		if strings.HasPrefix(portText, "+") || strings.HasPrefix(portText, "-") {
			return HostAndPort{}, invalidHostPort(s, "unparseable port number")
		}
		p, err := strconv.Atoi(portText)
		if err != nil {
			return HostAndPort{}, invalidHostPort(s, "unparseable port number")
		}
		if !validPort(p) {
			return HostAndPort{}, invalidHostPort(s, "port number out of range")
		}
		hp.port, hp.hasPort = p, true
	}
	return hp, nil
}

// HostAndPortFromParts combines a host with a port. The host must not carry a
// port of its own.
func HostAndPortFromParts(host string, port int) (HostAndPort, error) {
	if !validPort(port) {
		return HostAndPort{}, invalidHostPort(host, "port out of range: "+strconv.Itoa(port))
	}
	hp, err := ParseHostAndPort(host)
	if err != nil {
		return HostAndPort{}, err
	}
	if hp.hasPort {
		return HostAndPort{}, invalidHostPort(host, "host has a port")
	}
	hp.port, hp.hasPort = port, true
	return hp, nil
}

func validPort(p int) bool { return p >= 0 && p <= 65535 }

func (h HostAndPort) Host() string  { return h.host }
func (h HostAndPort) HasPort() bool { return h.hasPort }

// Port returns the port; ok is false when none was given.
func (h HostAndPort) Port() (port int, ok bool) { return h.port, h.hasPort }

func (h HostAndPort) PortOrDefault(d int) int {
	if h.hasPort {
		return h.port
	}
	return d
}

// String renders the canonical form, bracketing IPv6 hosts when needed.
func (h HostAndPort) String() string {
	b := &strings.Builder{}
	if strings.IndexByte(h.host, ':') >= 0 {
		b.WriteString("[" + h.host + "]")
	} else {
		b.WriteString(h.host)
	}
	if h.hasPort {
		b.WriteString(":" + strconv.Itoa(h.port))
	}
	return b.String()
}

func (h HostAndPort) MarshalJSON() ([]byte, error) { return json.Marshal(h.String()) }

// RequireBracketsForIPv6 rejects hosts such as "::1" that were given without
// brackets.
func (h HostAndPort) RequireBracketsForIPv6() (HostAndPort, error) {
	if h.hasBracketlessColons {
		return HostAndPort{}, invalidHostPort(h.host, "possible bracketless IPv6 literal")
	}
	return h, nil
}
