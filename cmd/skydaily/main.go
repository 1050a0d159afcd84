package main

import "github.com/pfrederiksen/skydaily/internal/cli"

func main() {
	cli.Execute()
}
