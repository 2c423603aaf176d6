package main

import "github.com/travelingorcas/orcalog/app"

func main() {
	app.New(nil).Run()
}
