//go:build linux

package wayland

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Object ids assigned by this client (client range starts at 2).
const (
	idDisplay    uint32 = 1
	idRegistry   uint32 = 2
	idSyncGlobal uint32 = 3
	idSeat       uint32 = 4
	idManager    uint32 = 5 // zwlr_data_control_manager_v1
	idSource     uint32 = 6 // zwlr_data_control_source_v1
	idDevice     uint32 = 7 // zwlr_data_control_device_v1
	idSyncOwned  uint32 = 8
)

const (
	ifaceSeat    = "wl_seat"
	ifaceManager = "zwlr_data_control_manager_v1"
)

// Offer is one MIME type and the bytes served for it.
type Offer struct {
	MIME string
	Data []byte
}

func socketPath() (string, error) {
	runtime := os.Getenv("XDG_RUNTIME_DIR")
	if runtime == "" {
		return "", fmt.Errorf("wayland: XDG_RUNTIME_DIR not set")
	}
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		display = "wayland-0"
	}
	if filepath.IsAbs(display) {
		return display, nil
	}
	return filepath.Join(runtime, display), nil
}

// Serve takes clipboard ownership, offering every MIME type in offers in
// order, and answers paste requests until another client replaces the
// selection or the compositor goes away.
func Serve(offers []Offer) error {
	path, err := socketPath()
	if err != nil {
		return err
	}
	c, err := dial(path)
	if err != nil {
		return fmt.Errorf("wayland: connect %s: %w", path, err)
	}
	defer c.close()

	globals, err := discover(c)
	if err != nil {
		return err
	}
	if err := claim(c, globals, offers); err != nil {
		return err
	}
	return serve(c, offers)
}

type request struct {
	object uint32
	opcode uint16
	args   *message
}

type globalNames struct {
	seat, manager uint32
}

// discover binds the registry and collects the seat and data-control
// manager globals.
func discover(c *conn) (globalNames, error) {
	var g globalNames
	var haveSeat, haveManager bool

	if err := c.send(idDisplay, 1 /* get_registry */, args().putUint32(idRegistry)); err != nil {
		return g, err
	}
	if err := c.send(idDisplay, 0 /* sync */, args().putUint32(idSyncGlobal)); err != nil {
		return g, err
	}

	for {
		ev, err := c.next()
		if err != nil {
			return g, err
		}
		ev.closeFD()

		if ev.objectID == idSyncGlobal && ev.opcode == 0 /* done */ {
			break
		}
		if ev.objectID != idRegistry || ev.opcode != 0 /* global */ || len(ev.payload) < 4 {
			continue
		}
		name := le.Uint32(ev.payload[:4])
		iface, _, err := decodeString(ev.payload[4:])
		if err != nil {
			continue
		}
		switch iface {
		case ifaceSeat:
			g.seat, haveSeat = name, true
		case ifaceManager:
			g.manager, haveManager = name, true
		}
	}

	if !haveSeat {
		return g, fmt.Errorf("wayland: %s not found", ifaceSeat)
	}
	if !haveManager {
		return g, fmt.Errorf("wayland: %s not found (compositor may not support wlr-data-control)", ifaceManager)
	}
	return g, nil
}

// claim creates a data source with every offer and sets it as the
// selection, then waits for the compositor to acknowledge.
func claim(c *conn, g globalNames, offers []Offer) error {
	requests := []request{
		{idRegistry, 0 /* bind */, args().putUint32(g.seat).putString(ifaceSeat).putUint32(1).putUint32(idSeat)},
		{idRegistry, 0 /* bind */, args().putUint32(g.manager).putString(ifaceManager).putUint32(2).putUint32(idManager)},
		{idManager, 0 /* create_data_source */, args().putUint32(idSource)},
	}
	for _, o := range offers {
		requests = append(requests, request{idSource, 0 /* offer */, args().putString(o.MIME)})
	}
	requests = append(requests,
		request{idManager, 1 /* get_data_device */, args().putUint32(idDevice).putUint32(idSeat)},
		request{idDevice, 0 /* set_selection */, args().putUint32(idSource)},
		request{idDisplay, 0 /* sync */, args().putUint32(idSyncOwned)},
	)

	for _, r := range requests {
		if err := c.send(r.object, r.opcode, r.args); err != nil {
			return err
		}
	}
	for {
		ev, err := c.next()
		if err != nil {
			return err
		}
		ev.closeFD()
		if ev.objectID == idSyncOwned && ev.opcode == 0 /* done */ {
			return nil
		}
	}
}

func serve(c *conn, offers []Offer) error {
	data := make(map[string][]byte, len(offers))
	for _, o := range offers {
		if _, ok := data[o.MIME]; !ok {
			data[o.MIME] = o.Data
		}
	}

	for {
		ev, err := c.next()
		if err != nil {
			// compositor exited
			return nil
		}
		if ev.objectID != idSource {
			ev.closeFD()
			continue
		}

		switch ev.opcode {
		case 0: // send
			mime, _, _ := decodeString(ev.payload)
			if ev.fd >= 0 {
				if b, ok := data[mime]; ok {
					writeAll(ev.fd, b)
				}
				ev.closeFD()
			}
		case 1: // cancelled
			ev.closeFD()
			return nil
		default:
			ev.closeFD()
		}
	}
}

func writeAll(fd int, b []byte) {
	for len(b) > 0 {
		n, err := syscall.Write(fd, b)
		if err != nil || n <= 0 {
			return
		}
		b = b[n:]
	}
}
