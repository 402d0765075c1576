// Command fabricctl is a CLI client for a running fabricd daemon: it
// submits tasks, reads system status, and can tail live status in a
// terminal UI.
package main

func main() {
	Execute()
}
