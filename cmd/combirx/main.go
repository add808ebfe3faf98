// The combirx binary is the command-line interface for local discovery runs.
package main

import "github.com/turtacn/CombiRx-Discovery/internal/interfaces/cli"

func main() {
	cli.Execute()
}

//Personal.AI order the ending
