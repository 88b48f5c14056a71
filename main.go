// Copyright © 2024 The moqls authors

package main

import "github.com/rjmurillo/moq.autocomplete/cmd"

func main() {
	cmd.Execute()
}
