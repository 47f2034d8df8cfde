package main

import "github.com/eduoj/ojcli/cmd/ojcli/cmd"

func main() {
	cmd.Execute()
}
