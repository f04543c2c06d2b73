package main

import "github.com/trellis-data/trellis/cmd"

func main() {
	cmd.Execute()
}
