package main

import (
	"os"

	"shay-b-io/api/internal/routers"
	"shay-b-io/api/pkg/util"
)

func main() {
	router := routers.InitRoute()
	port := util.LoadEnvOr("PORT", "8080")

	util.LogInfo("starting server on port " + port)
	if err := router.Run("0.0.0.0:" + port); err != nil {
		util.LogError("failed to start server", err)
		os.Exit(1)
	}
}
