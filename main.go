package main

import (
	"github.com/TomKeddie/luna/cmd"
)

func main() {
	cmd.Execute()
}
