// Command zipview lists, extracts and compares zip archives.
package main

import "github.com/meigma/zipview/cmd/zipview/cmd"

func main() {
	cmd.Execute()
}
