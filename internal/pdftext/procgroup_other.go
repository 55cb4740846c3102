//go:build !unix

package pdftext

import "os/exec"

// Without process groups only the direct child is killed; WaitDelay still
// bounds how long Run waits on its pipes.
func killProcessGroupOnCancel(*exec.Cmd) {}
