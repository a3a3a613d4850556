// The main package for the walkthroughs executable.
package main

import (
	"github.com/JakeFAU/twir-walkthroughs/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
