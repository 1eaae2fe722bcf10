package main

import "github.com/relloyd/biopipe/cmd"

func main() {
	cmd.Execute()
}
