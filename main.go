package main

import "github.com/lwkobe/ryujin/cmd"

func main() {
	cmd.Execute()
}
