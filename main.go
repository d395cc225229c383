package main

import "github.com/Daskott/zantag/cmd"

func main() {
	cmd.Execute()
}
