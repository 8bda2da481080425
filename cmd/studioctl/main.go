package main

import (
	"fmt"
	"os"

	"dancestudio_backend/internals/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
