package main

import (
	"os"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
