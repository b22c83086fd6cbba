// inkcrypt is the command line client for the InkCrypt server
package main

import "github.com/radwayousryyy/InkCrypt/internal/cli"

func main() {
	cli.Execute()
}
