package main

import "github.com/dmikhr/upstream-sync/cmd/upstream-sync/cmd"

func main() {
	cmd.Execute()
}
