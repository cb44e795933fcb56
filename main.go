package main

import "advanced-prompt/cmd"

func main() {
	cmd.Execute()
}
