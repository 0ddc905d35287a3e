package main

import "github.com/yeremiapane/queue-app/cmd"

func main() {
	cmd.Execute()
}
