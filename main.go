// main is the entry point for the flowstate CLI.
package main

import (
	"github.com/huangsam/flowstate/cmd"
	"github.com/huangsam/flowstate/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Cannot run flowstate", err)
	}
}
