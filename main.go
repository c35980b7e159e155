package main

import "github.com/nativeschema/site-api/cmd"

func main() {
	cmd.Execute()
}
