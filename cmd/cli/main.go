package main

import (
	"os"

	"github.com/hamed0406/sitestatus/cmd/cli/commands"
)

func main() {
	os.Exit(commands.Execute())
}
