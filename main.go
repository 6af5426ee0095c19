// Package main is the entry point for the hypisolate CLI.
package main

import "hypisolate.dev/pkg/hypisolate/cmd"

func main() {
	cmd.Execute()
}
