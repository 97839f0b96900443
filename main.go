package main

import "github.com/KaramelBytes/medcombo/cmd"

func main() {
	cmd.Execute()
}
