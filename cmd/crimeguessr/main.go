package main

import "github.com/mcoot/crimeguessr/internal/cli"

func main() {
	cli.Execute()
}
