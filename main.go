package main

import "github.com/kozaktomas/photo-places/cmd"

func main() {
	cmd.Execute()
}
