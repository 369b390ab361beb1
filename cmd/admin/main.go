package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/remotetm/internal/admin"
)

func main() {
	cmd := admin.NewRootCommand(os.Stdout)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
