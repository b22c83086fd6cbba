// Package version exposes build information set at link time, e.g.
//
//	go build -ldflags "-X github.com/radwayousryyy/InkCrypt/internal/version.version=v1.0.0"
package version

var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

type Info struct {
	Version   string
	BuildDate string
	GitCommit string
}

func Get() Info {
	return Info{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
	}
}
