package main

import "github.com/mockmate/interviewroom/cmd"

func main() {
	cmd.Execute()
}
