package base

import (
	"sync"

	"github.com/rotisserie/eris"
)

// PortManager hands out chromedriver ports so concurrent crawls never share one
type PortManager struct {
	basePort  int
	portRange int
	inUse     map[int]bool
	mu        sync.Mutex
}

// NewPortManager creates a port manager over [basePort, basePort+portRange)
func NewPortManager(basePort, portRange int) *PortManager {
	return &PortManager{
		basePort:  basePort,
		portRange: portRange,
		inUse:     make(map[int]bool, portRange),
	}
}

// Acquire reserves the lowest free port
func (pm *PortManager) Acquire() (int, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	for i := 0; i < pm.portRange; i++ {
		port := pm.basePort + i
		if !pm.inUse[port] {
			pm.inUse[port] = true
			return port, nil
		}
	}

	return 0, eris.Errorf("base: no available ports in range %d-%d", pm.basePort, pm.basePort+pm.portRange-1)
}

// Release returns port to the pool
func (pm *PortManager) Release(port int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	delete(pm.inUse, port)
}
