// Command keywatch polls product searches and publishes newly observed
// items as an RSS feed.
package main

import (
	"fmt"
	"os"

	"github.com/keywatch/keywatch/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
