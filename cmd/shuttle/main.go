// Command shuttle runs the shuttle control API server and its maintenance
// tasks. Its sole responsibility is wiring dependencies together; no business
// logic belongs here.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
