// Package version provides the shipver version constant.
// The Version constant is rewritten by `shipver release` through the
// go-const artifact in .shipver.yml.
package version

// Version is the current shipver version.
const Version = "0.3.0"
