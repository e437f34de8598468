package release

import (
	"fmt"
	"regexp"
)

// Built-in artifact kinds
const (
	KindInno    = "inno"
	KindDesktop = "desktop"
	KindGoConst = "go-const"
	KindRegex   = "regex"
)

// InnoSetupPattern matches an installer script directive such as
// #define MyAppVersion "0.8.3"
func InnoSetupPattern(define string) *regexp.Regexp {
	if define == "" {
		define = "MyAppVersion"
	}
	return regexp.MustCompile(`#define\s+` + regexp.QuoteMeta(define) + `\s+"(?P<version>[^"]+)"`)
}

// DesktopPattern matches a desktop entry class identifier such as
// StartupWMClass=MusiCalc v0.8.3
func DesktopPattern(app string) *regexp.Regexp {
	return regexp.MustCompile(`StartupWMClass=` + regexp.QuoteMeta(app) + ` v(?P<version>[0-9.]+)`)
}

// GoConstPattern matches a Go version declaration such as
// const Version = "1.0.2" (an optional leading "v" inside the quotes is kept)
func GoConstPattern(name string) *regexp.Regexp {
	if name == "" {
		name = "Version"
	}
	return regexp.MustCompile(`(?m)^\s*(?:const|var)\s+` + regexp.QuoteMeta(name) + `\s*=\s*"v?(?P<version>[^"]+)"`)
}

// PatternFor builds the pattern for a named kind.
// arg is the define name, app name, identifier or raw expression depending on kind.
func PatternFor(kind, arg string) (*regexp.Regexp, error) {
	switch kind {
	case KindInno:
		return InnoSetupPattern(arg), nil
	case KindDesktop:
		if arg == "" {
			return nil, fmt.Errorf("desktop artifacts need an app name")
		}
		return DesktopPattern(arg), nil
	case KindGoConst:
		return GoConstPattern(arg), nil
	case KindRegex:
		re, err := regexp.Compile(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		if re.SubexpIndex(versionGroup) < 0 {
			return nil, fmt.Errorf("pattern %q must contain a (?P<%s>...) group", arg, versionGroup)
		}
		return re, nil
	default:
		return nil, fmt.Errorf("unknown artifact kind %q", kind)
	}
}
