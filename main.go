package main

import "github.com/theirongolddev/stipend/cmd"

func main() {
	cmd.Execute()
}
