// Copyright © 2024 The Shelly authors

package main

import "github.com/luthersystems/shelly/cmd"

func main() {
	cmd.Execute()
}
