/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package sampler

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
)

type networkProbe struct {
	mu       sync.Mutex
	lastRx   uint64
	lastTx   uint64
	lastSeen bool
}

func init() { Register(&networkProbe{}) }

func (*networkProbe) Name() string { return Network }

// Read reports send/receive byte-rate deltas since the previous sample by
// summing /proc/net/dev across interfaces, excluding loopback. The first
// call establishes a baseline and reports a zero rate.
func (p *networkProbe) Read() (Sample, bool) {
	rx, tx, ok := readNetDev()
	if !ok {
		return nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	var rxRate, txRate float64
	if p.lastSeen {
		if rx >= p.lastRx {
			rxRate = float64(rx - p.lastRx)
		}
		if tx >= p.lastTx {
			txRate = float64(tx - p.lastTx)
		}
	}
	p.lastRx, p.lastTx, p.lastSeen = rx, tx, true
	return Sample{"net_rx_bytes": rxRate, "net_tx_bytes": txRate}, true
}

func readNetDev() (rx, tx uint64, ok bool) {
	f, err := os.Open("/proc/net/dev")
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo <= 2 {
			continue // header lines
		}
		line := sc.Text()
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		iface := strings.TrimSpace(parts[0])
		if iface == "lo" {
			continue
		}
		fields := strings.Fields(parts[1])
		if len(fields) < 9 {
			continue
		}
		rxBytes, err1 := strconv.ParseUint(fields[0], 10, 64)
		txBytes, err2 := strconv.ParseUint(fields[8], 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		rx += rxBytes
		tx += txBytes
	}
	return rx, tx, true
}
