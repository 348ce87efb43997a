// Command toolconsole drives a tool backend from the terminal and serves the
// browser console.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	root := newRootCmd(&app{out: os.Stdout, errOut: os.Stderr})
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
