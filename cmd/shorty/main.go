package main

import "github.com/dmitrymomot/shorty/cmd/shorty/cmd"

func main() {
	cmd.Execute()
}
