package version

import (
	"fmt"
	"io"
	"os"
)

// set with -ldflags "-X github.com/ikenchina/rootbar/pkg/version.version=..."
var (
	version = "dev"
	date    string
	commit  string
)

type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Date    string `json:"date,omitempty"`
}

func Get() Info {
	return Info{
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

func Print(w io.Writer) {
	info := Get()
	fmt.Fprintf(w, "Version: %s\n", info.Version)
	fmt.Fprintf(w, "CommitID: %s\n", info.Commit)
	fmt.Fprintf(w, "Binary: %s\n", os.Args[0])
	fmt.Fprintf(w, "Compile date: %s\n", info.Date)
}
