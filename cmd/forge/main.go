package main

import "github.com/szvest/electron-forge/cmd/forge/cmd"

func main() {
	cmd.Execute()
}
