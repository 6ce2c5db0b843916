// Command stagehand inspects and previews engine tuning for the
// stagehand overlay library.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/stagehand/cmd/stagehand/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
