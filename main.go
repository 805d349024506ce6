package main

import (
	"fmt"
	"os"

	"github.com/AnyUserName/momento/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "momento:", err)
		os.Exit(1)
	}
}
