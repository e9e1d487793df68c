package main

import "github.com/ardanlabs/ballot/app/tooling/ballot/cmd"

func main() {
	cmd.Execute()
}
