package main

import "ofertalia/internal/app"

// @title           Ofertalia commercial pipeline API
// @version         1.0
// @description     Lead-to-company conversion pipeline: state machine, assignment, CRM verification and task scoring.
// @BasePath        /
func main() {
	app.Run()
}
