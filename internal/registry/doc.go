// Package registry holds the mapping between module manifests and the Go
// handlers compiled into the binary. Every launcher and asset type is
// declared twice: once in its manifest.hcl and once in Go. The registry
// validates that both sides agree before any plan is executed.
package registry
