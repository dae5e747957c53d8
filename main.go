// SPDX-License-Identifier: MIT
package main

import "github.com/hammy-pdi-dev/update-repos/cmd/updaterepos"

// execute is overridable in tests.
var execute = updaterepos.Execute

func main() {
	execute()
}
