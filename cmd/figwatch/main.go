// figwatch watches figure directories and converts vector sources into
// document-embeddable artifacts.
package main

import (
	"os"

	"github.com/hupe1980/figwatch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
