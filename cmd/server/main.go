package main

import "teamfinder/internal/app"

func main() {
	app.Run()
}
