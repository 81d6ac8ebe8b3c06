package main

import "github.com/gosh-sh/gosh/cmd"

func main() {
	cmd.Execute()
}
