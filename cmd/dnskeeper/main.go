// dnskeeper keeps network adapters on their declared DNS servers.
package main

import "runtime"

func init() {
	// The tray event loop must own the main thread.
	runtime.LockOSThread()
}

func main() {
	Execute()
}
