// The main package for the contactcrawler executable.
package main

import (
	"github.com/JakeFAU/contactcrawler/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
