package main

import (
	"openportal.dev/openportal/cli/cmd"
)

func main() {
	cmd.Execute()
}
