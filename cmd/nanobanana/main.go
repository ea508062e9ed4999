package main

import "github.com/tansive/nanobanana/internal/cli"

func main() {
	cli.Execute()
}
