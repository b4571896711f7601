package main

import "github.com/maastricht-university/edmo-voice/cmd"

func main() {
	cmd.Execute()
}
