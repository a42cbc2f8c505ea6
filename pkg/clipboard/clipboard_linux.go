//go:build linux

package clipboard

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"syscall"

	"mdclip/pkg/clipboard/internal/wayland"
)

// spawnOwner re-executes this binary as a detached Wayland clipboard owner
// and hands it the offers on stdin.
func spawnOwner(offers []Offer) error {
	payload, err := json.Marshal(offers)
	if err != nil {
		return err
	}

	cmd := exec.Command(os.Args[0], ServeCommand)
	cmd.Stdin = bytes.NewReader(payload)
	// New session so the owner outlives the parent.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd.Start()
}

// Serve claims the Wayland clipboard and serves offers until another
// client takes ownership.
func Serve(offers []Offer) error {
	wl := make([]wayland.Offer, len(offers))
	for i, o := range offers {
		wl[i] = wayland.Offer{MIME: o.MIME, Data: o.Data}
	}
	return wayland.Serve(wl)
}
