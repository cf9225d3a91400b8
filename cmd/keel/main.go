package main

import "github.com/keeldata/keel/cmd/keel/cmd"

func main() {
	cmd.Execute()
}
