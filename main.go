package main

import "github.com/ofblood/website/cmd"

func main() {
	cmd.Start()
}
