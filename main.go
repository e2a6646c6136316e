package main

import "github.com/Tiliavir/clocktime/cmd"

func main() {
	cmd.Execute()
}
