package main

import "github.com/clickshot/clickshot/cmd/clickshot/commands"

func main() {
	commands.Execute()
}
