package main

import (
	"os"

	"github.com/awooooool/tlsrpt-extractor/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
