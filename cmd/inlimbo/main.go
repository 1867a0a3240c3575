// Command inlimbo is the operator CLI for the inlimbo music player core:
// it scans a music library into the on-disk index, lists output
// devices, plays the library from the terminal, and runs the
// MPRIS-controllable background service.
package main

func main() {
	execute()
}
