// The main package for the sponavi-crawler executable.
package main

import (
	"github.com/npblake/sponavi-crawler/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
