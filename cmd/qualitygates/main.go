package main

import "inkbook/cmd/qualitygates/commands"

func main() {
	commands.Execute()
}
