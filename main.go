package main

import "github.com/rnwolfe/cram/cmd"

func main() {
	cmd.Execute()
}
