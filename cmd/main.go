package main

import (
	"fmt"
	"os"

	_ "myfood/docs"
)

// @title MyFood API
// @version 1.0
// @description Customers, business owners, menus and orders for a food delivery service.
// @host localhost:9091
// @BasePath /api/v1
func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
