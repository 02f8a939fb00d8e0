package main

import "github.com/magicollection/magi/cmd"

func main() {
	cmd.Execute()
}
