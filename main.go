package main

import (
	"os"

	"github.com/prgate/prgate/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
