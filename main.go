package main

import "github.com/jsphweid/tapchord/cmd"

func main() {
	cmd.Execute()
}
