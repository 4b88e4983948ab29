// The main package for the mirrorfeed executable.
package main

import (
	"github.com/mirrorfeed/mirrorfeed/cmd"
)

func main() {
	cmd.Execute()
}
