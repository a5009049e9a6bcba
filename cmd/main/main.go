package main

import (
	"context"
	"fmt"
	"os"

	"stock-predictor/src/cli"
)

// -----------------------------------------------------------------------------

func main() {
	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
