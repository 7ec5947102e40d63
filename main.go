// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/envinject/cmd/envinject"

func main() {
	cmd.Execute()
}
