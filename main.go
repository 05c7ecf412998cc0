package main

import "grievancedesk/internal/app"

func main() {
	app.Main()
}
