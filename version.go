// Package idleguard runs a shell command under an idle-output watchdog.
package idleguard

// Version is the idleguard release version.
const Version = "0.3.0"
