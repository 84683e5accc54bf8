package main

import "github.com/philipparndt/gocalib/cmd"

func main() {
	cmd.Execute()
}
