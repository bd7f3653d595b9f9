package main

import (
	"os"

	"studentblog/service"
)

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches the command line to the service package.
func RealMain() {
	args := os.Args[1:]
	if len(args) == 0 {
		service.HandleCommand([]string{"help"})
		exit(1)
		return
	}
	exit(service.HandleCommand(args))
}
