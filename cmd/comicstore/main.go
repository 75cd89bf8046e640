// @title Comicstore Gateway API
// @version 1.0
// @description Session gateway for the comic storefront: auth, catalog, cart and purchase history.
// @host localhost:8070
// @BasePath /api
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"comicstore-go/internal/bootstrap"
)

func main() {
	fmt.Printf("[%s] [INFO] [bootstrap] starting comicstore gateway...\n", time.Now().Format("2006-01-02 15:04:05.000"))
	if err := bootstrap.Run(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "comicstore gateway failed: %v\n", err)
		os.Exit(1)
	}
}
