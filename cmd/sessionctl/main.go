package main

import "github.com/mcoot/sessiongate/internal/cli"

func main() {
	cli.Execute()
}
