// Package buildinfo exposes build-time version information.
//
// Values are injected with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/unionhub-go/internal/infra/buildinfo.Version=v1.2.0"
//
// When Version is not injected, the module version recorded by the Go
// toolchain is used, which gives "go install"ed binaries a real version.
package buildinfo
