// Command tripctl plans delivery trips offline from an orders file or from
// synthetic orders, printing the plan in the same schema as the HTTP API.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
