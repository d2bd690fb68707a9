package main

import "github.com/notargets/efield/cmd"

func main() {
	cmd.Execute()
}
