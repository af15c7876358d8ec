package main

import "github.com/knpwrs/vidmerge/cmd"

// main is the entry point for the vidmerge CLI application.
//
// This application joins video clips in file name order with ffmpeg and
// uploads the result to YouTube.
func main() {
	cmd.Execute()
}
