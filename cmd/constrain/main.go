// Package main provides the constrain CLI for validating YAML documents
// against declarative constraint profiles.
package main

func main() {
	Execute()
}
