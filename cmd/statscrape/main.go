package main

import "github.com/pfrederiksen/statscrape/internal/cli"

func main() {
	cli.Execute()
}
