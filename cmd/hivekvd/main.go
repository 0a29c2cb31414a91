// Command hivekvd runs the server process: it opens a storage engine, binds
// a broker and dispatcher to it, and accepts connections until signalled to
// stop.
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
