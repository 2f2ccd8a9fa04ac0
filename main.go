package main

import "github.com/maastricht-university/wavcut/cmd"

func main() {
	cmd.Execute()
}
