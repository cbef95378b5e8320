// wikigen indexes markdown corpora and serves hybrid keyword plus
// semantic search over them.
package main

import (
	"fmt"
	"os"

	"github.com/usesalt/wikigen/cmd/wikigen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
