package sdk

import (
	"fmt"
	"regexp"
	"strings"
)

const unknown = "Unknown"

var (
	browserVersionRe = regexp.MustCompile(`(?i)(Chrome|Firefox|Safari|Edge|MSIE|Trident)/?\s*(\d+)`)
	osVersionRe      = regexp.MustCompile(`(?i)(?:Windows NT|Mac OS X|Android|iOS)\s*([0-9._]+)`)
	mobileDeviceRe   = regexp.MustCompile(`Mobile|Tablet|iPad|iPhone|Android`)
)

// ProbeEnvironment derives browser, OS and device information from a
// user-agent string and screen geometry. Pure and deterministic; callers
// invoke it per event rather than caching the result.
func ProbeEnvironment(userAgent string, screenWidth, screenHeight int) Environment {
	return Environment{
		Browser:          browserFamily(userAgent),
		BrowserVersion:   browserVersion(userAgent),
		OS:               osFamily(userAgent),
		OSVersion:        osVersion(userAgent),
		DeviceType:       deviceType(userAgent),
		ScreenResolution: fmt.Sprintf("%dx%d", screenWidth, screenHeight),
	}
}

// browserFamily tests tokens in priority order; Firefox before Chrome
// because Firefox UAs do not carry a Chrome token but Chrome UAs carry
// Safari, and MSIE/Trident are grouped as IE.
func browserFamily(ua string) string {
	switch {
	case strings.Contains(ua, "Firefox"):
		return "Firefox"
	case strings.Contains(ua, "Chrome"):
		return "Chrome"
	case strings.Contains(ua, "Safari"):
		return "Safari"
	case strings.Contains(ua, "Edge"):
		return "Edge"
	case strings.Contains(ua, "MSIE"), strings.Contains(ua, "Trident/"):
		return "IE"
	}
	return unknown
}

func browserVersion(ua string) string {
	if m := browserVersionRe.FindStringSubmatch(ua); m != nil {
		return m[2]
	}
	return unknown
}

func osFamily(ua string) string {
	switch {
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Mac"):
		return "MacOS"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "iOS"):
		return "iOS"
	}
	return unknown
}

func osVersion(ua string) string {
	if m := osVersionRe.FindStringSubmatch(ua); m != nil {
		return m[1]
	}
	return unknown
}

func deviceType(ua string) string {
	if mobileDeviceRe.MatchString(ua) {
		return "mobile"
	}
	return "desktop"
}
