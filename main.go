package main

import "github.com/philipparndt/modelfit/cmd"

func main() {
	cmd.Execute()
}
