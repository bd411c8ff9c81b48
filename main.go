package main

import (
	"os"

	"github.com/spigell/recruit-tracker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
