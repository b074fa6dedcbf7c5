package main

import "habit-cheer-backend/cmd"

func main() {
	cmd.Run()
}
