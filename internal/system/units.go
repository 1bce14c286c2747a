package system

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/coreos/go-systemd/v22/dbus"
)

// SystemdUnits queries unit state over the systemd D-Bus API. The
// connection is opened lazily and reopened after a failure.
type SystemdUnits struct {
	mu   sync.Mutex
	conn *dbus.Conn
}

// NewSystemdUnits returns a checker that connects on first use.
func NewSystemdUnits() *SystemdUnits {
	return &SystemdUnits{}
}

// ActiveUnits implements UnitChecker. Names without a suffix are treated
// as services. Units systemd does not know about are reported inactive.
func (u *SystemdUnits) ActiveUnits(ctx context.Context, names []string) (map[string]bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.conn == nil {
		conn, err := dbus.NewWithContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("systemd: connect: %w", err)
		}
		u.conn = conn
	}

	full := make([]string, len(names))
	byUnit := make(map[string]string, len(names))
	for i, n := range names {
		full[i] = unitName(n)
		byUnit[full[i]] = n
	}

	statuses, err := u.conn.ListUnitsByNamesContext(ctx, full)
	if err != nil {
		u.conn.Close()
		u.conn = nil
		return nil, fmt.Errorf("systemd: list units: %w", err)
	}

	active := make(map[string]bool, len(names))
	for _, n := range names {
		active[n] = false
	}
	for _, st := range statuses {
		if n, ok := byUnit[st.Name]; ok {
			active[n] = st.ActiveState == "active"
		}
	}
	return active, nil
}

// Close releases the D-Bus connection.
func (u *SystemdUnits) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn != nil {
		u.conn.Close()
		u.conn = nil
	}
}

func unitName(n string) string {
	if strings.Contains(n, ".") {
		return n
	}
	return n + ".service"
}
