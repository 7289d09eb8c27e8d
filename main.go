package main

import "github.com/Digital-Shane/season-tidy/internal/cmd"

func main() {
	cmd.Execute()
}
