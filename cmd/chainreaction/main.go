package main

import "github.com/mcoot/chainreaction/internal/cli"

func main() {
	cli.Execute()
}
