package main

import "furniture-catalog/internal/cli"

func main() {
	cli.Execute()
}
