package main

import "github.com/forPelevin/storycut/internal/cli"

func main() {
	cli.Main()
}
