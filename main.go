package main

import (
	"github.com/featwatch/featwatch/cmd"
)

func main() {
	cmd.Execute()
}
