// Command motion validates animation definitions and runs scripts against
// them headlessly.
package main

func main() {
	Execute()
}
