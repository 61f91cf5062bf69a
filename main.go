package main

import "vetblood-market-api/app"

func main() {
	app.Run()
}
