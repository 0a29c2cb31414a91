// Command hivekv is a command-line client for the hivekv server: one
// subcommand per wire command, plus subscribe/publish for the broker.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
