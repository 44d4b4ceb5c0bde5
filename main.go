package main

import "github.com/gaurav-prasanna/postpipe/cmd"

func main() {
	cmd.Execute()
}
