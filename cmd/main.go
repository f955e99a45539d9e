package main

import "github.com/adanyl0v/go-task-tracker/internal/app"

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	app.MustOpenStorage()
	defer app.CloseStorage()

	app.MustConnectRedis()
	defer app.DisconnectRedis()

	app.MustListenAndServeHTTP()
}
