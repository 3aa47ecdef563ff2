package main

import (
	"os"

	"github.com/AnyUserName/ixurl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
