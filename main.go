package main

import "github.com/playsift/levelscope/cmd"

func main() {
	cmd.Execute()
}
