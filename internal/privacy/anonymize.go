package privacy

import (
	"regexp"
	"strings"
)

const (
	// AnonymizedIPPlaceholder is stored when the client address is absent or unrecognized.
	AnonymizedIPPlaceholder = "0.0.0.0"
	// UnknownUserAgent is stored when no user agent header was presented.
	UnknownUserAgent = "Unknown"

	userAgentMaxLength  = 500
	octetSeparator      = "."
	segmentSeparator    = ":"
	zeroedFinalSegment  = "0"
	ipv4OctetCount      = 4
	ipv4AddressPattern  = `(?i)(?:::ffff:)?(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})`
)

var ipv4Expression = regexp.MustCompile(ipv4AddressPattern)

// AnonymizeIP reduces a client address to a privacy-preserving form by zeroing
// its final component. Dotted-quad IPv4 addresses, including IPv6-mapped ones,
// lose their last octet; colon-delimited addresses lose their last segment.
// Every other shape collapses to the all-zero placeholder, so the function is
// total over arbitrary input.
func AnonymizeIP(rawAddress string) string {
	if rawAddress == "" {
		return AnonymizedIPPlaceholder
	}

	if match := ipv4Expression.FindStringSubmatch(rawAddress); match != nil {
		octets := strings.Split(match[1], octetSeparator)
		if len(octets) == ipv4OctetCount {
			octets[ipv4OctetCount-1] = zeroedFinalSegment
			return strings.Join(octets, octetSeparator)
		}
	}

	// Zeroing only the last 16 bits of an IPv6 address is weaker than common
	// prefix-truncation practice; the behavior is kept as originally deployed.
	if strings.Contains(rawAddress, segmentSeparator) {
		segments := strings.Split(rawAddress, segmentSeparator)
		if len(segments) > 1 {
			segments[len(segments)-1] = zeroedFinalSegment
			return strings.Join(segments, segmentSeparator)
		}
	}

	return AnonymizedIPPlaceholder
}

// SanitizeUserAgent caps the stored user agent at 500 characters and
// substitutes a sentinel when the header is absent. Longer values are
// silently truncated.
func SanitizeUserAgent(rawUserAgent string) string {
	if rawUserAgent == "" {
		return UnknownUserAgent
	}

	runes := []rune(rawUserAgent)
	if len(runes) > userAgentMaxLength {
		return string(runes[:userAgentMaxLength])
	}

	return rawUserAgent
}
