package main

import "github.com/deploymenttheory/go-apfs-resolve/cmd"

func main() {
	cmd.Execute()
}
