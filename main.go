package main

import "mindbot/cmd"

func main() {
	cmd.Execute()
}
