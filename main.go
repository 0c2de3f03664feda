package main

import "relief/cmd"

func main() {
	cmd.Execute()
}
