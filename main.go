package main

import "github.com/grovetools/meetinglogs/cmd"

func main() {
	cmd.Execute()
}
