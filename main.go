package main

import "github.com/timvw/byobu-select/cmd"

func main() {
	cmd.Execute()
}
