package main

import "github.com/propflow/propertyflow/cmd"

func main() {
	cmd.Execute()
}
