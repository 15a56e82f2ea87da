// @title AidPal Server API
// @version 1.0
// @description First-aid wound analysis service with model fallback
// @host localhost:8080
// @BasePath /api
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"aidpal-server-go/internal/bootstrap"
)

func main() {
	fmt.Printf("[%s] [INFO] [boot] starting aidpal-server...\n", time.Now().Format("2006-01-02 15:04:05.000"))
	if err := bootstrap.Run(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "aidpal-server failed: %v\n", err)
		os.Exit(1)
	}
}
