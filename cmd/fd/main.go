// Package main is the entry point for the front-desk CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/evcraddock/front-desk/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
