package main

import "github.com/jcmexdev/storefront/internal/cli"

func main() {
	cli.Execute()
}
