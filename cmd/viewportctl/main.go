package main

import (
	"viewportd/internal/ctl"
)

func main() {
	ctl.Execute()
}
