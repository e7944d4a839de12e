package main

import "github.com/Dekic648/segmentator/cmd"

func main() {
	cmd.Execute()
}
