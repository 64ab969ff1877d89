// Command nutricalc runs the nutrition calculators from the terminal without
// a database or server.
// Usage: go run ./cmd/nutricalc --help
package main

func main() {
	Execute()
}
