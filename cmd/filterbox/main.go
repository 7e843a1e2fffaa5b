package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-filterbox/internal/cli"
)

func main() {
	if err := cli.NewCLI().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
