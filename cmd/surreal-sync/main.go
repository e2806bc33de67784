package main

import (
	"github.com/surrealdb/surreal-sync/cmd"
)

func main() {
	cmd.Execute()
}
