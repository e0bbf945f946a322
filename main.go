package main

import "shaderdbg/cmd"

func main() {
	cmd.Execute()
}
