package main

import "nathanbeddoewebdev/chainwatch/cmd"

func main() {
	cmd.Execute()
}
