// Command forumctl drives the registration form and the admin dashboard
// against a running forum API.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
