// The main package for the profile-scout executable.
package main

import (
	"github.com/soclens/profile-scout/cmd"
)

func main() {
	cmd.Execute()
}
