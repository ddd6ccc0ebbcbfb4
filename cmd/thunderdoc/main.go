package main

import "github.com/longlodw/thunderdoc/internal/cli"

func main() {
	cli.Execute()
}
