package main

import "cinema-cli/cmd"

func main() {
	cmd.Execute()
}
