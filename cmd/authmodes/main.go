package main

import "github.com/aussiebroadwan/authmodes/cmd/authmodes/cmd"

func main() {
	cmd.Execute()
}
