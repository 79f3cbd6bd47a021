// Command companion is a conversational companion for the terminal.
package main

import "github.com/diogo/companion/internal/commands"

func main() {
	commands.Execute()
}
