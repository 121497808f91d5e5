// Command teamctl runs maintenance jobs against the team-ops store.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
