package main

import "github.com/MrSnakeDoc/arvai/cmd/arvai/cmd"

func main() {
	cmd.Execute()
}
