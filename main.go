package main

import "github.com/arbitragex/arbfeed/cmd"

func main() {
	cmd.Execute()
}
