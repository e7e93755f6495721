// Command fatxinfo mounts a FATX disk image and prints its directory tree,
// one entry per line with its attribute flags; it does not print the
// volume geometry. It is a minimal entry point to prove the module links
// and runs — the interactive shell, recursive mirroring, and installer
// named out of scope by spec §1 are not implemented here.
package main

import (
	"fmt"
	"os"

	"github.com/rstms/fatx/host"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: fatxinfo <image>")
		os.Exit(1)
	}

	img, err := host.OpenImage(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer img.Close()

	records, err := img.ScanFiles()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, r := range records {
		attrs := ""
		if r.Dir {
			attrs += "d"
		}
		if r.ReadOnly {
			attrs += "r"
		}
		if r.Hidden {
			attrs += "h"
		}
		if r.System {
			attrs += "s"
		}
		fmt.Printf("%-6s %s\n", attrs, r.Name)
	}
}
