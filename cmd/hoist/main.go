package main

import "github.com/mvp-joe/project-hoist/internal/cli"

func main() {
	cli.Execute()
}
