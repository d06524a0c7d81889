package main

import (
	"fmt"
	"os"
)

func main() {
	if err := execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func execute(args []string) error {
	root, a := newRootCmd()
	defer a.close()
	root.SetArgs(args)
	return root.Execute()
}
