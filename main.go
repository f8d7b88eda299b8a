package main

import "github.com/frahmantamala/shared-expenses/cmd"

func main() {
	cmd.Execute()
}
