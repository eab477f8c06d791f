package main

import "github.com/Spartificial/project-services/cmd"

func main() {
	cmd.Execute()
}
