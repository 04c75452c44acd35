package main

import (
	"os"

	"github.com/kaboocam/kaboocam/cmd"
)

func main() {
	os.Exit(cmd.Run())
}
