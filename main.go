package main

import "github.com/bcdannyboy/dprice/cmd"

func main() {
	cmd.Execute()
}
