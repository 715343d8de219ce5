package main

import "github.com/wonder-codes/echo-repo/cmd"

func main() {
	cmd.Execute()
}
