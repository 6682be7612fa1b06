package main

import "notesvc/cmd"

func main() {
	cmd.Execute()
}
