// SPDX-License-Identifier: MIT
package sink

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	applog "audiohub/internal/log"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Sample Count      | uint16         | 2            | Number of samples (N)   |
| Samples           | []int32        | N * 4        | PCM payload             |
+-----------------------------------------------------------------------------+
*/

// headerSize is sequence + timestamp + sample count.
const headerSize = 4 + 8 + 2

// maxPacketSamples keeps each datagram with its header under 64KiB.
const maxPacketSamples = 8192

// UDP sends enqueued samples as sequenced, timestamped datagrams.
// Buffers larger than one datagram are split into consecutive packets.
type UDP struct {
	mu     sync.Mutex // Protects conn and packet state during Enqueue/Close
	conn   *net.UDPConn
	closed bool

	sequenceNum uint32
	now         func() int64 // Timestamp source, swappable in tests

	packetBuffer *bytes.Buffer // Reusable buffer for packet construction
}

// NewUDP creates a UDP sink targeting "host:port".
func NewUDP(targetAddress string) (*UDP, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target address '%s': %w", targetAddress, err)
	}

	// No local bind needed for sending.
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP for target '%s': %w", targetAddress, err)
	}

	applog.Infof("UDP sink: connection established to %s", conn.RemoteAddr())

	return &UDP{
		conn:         conn,
		now:          unixNano,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Enqueue packs the samples into one or more datagrams and sends them.
// The network path never reports full; a send failure is an error.
func (u *UDP) Enqueue(samples []int32) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return 0, ErrClosed
	}

	sent := 0
	for sent < len(samples) {
		chunk := samples[sent:]
		if len(chunk) > maxPacketSamples {
			chunk = chunk[:maxPacketSamples]
		}

		if err := u.sendPacket(chunk); err != nil {
			return sent, err
		}
		sent += len(chunk)
	}
	return sent, nil
}

// sendPacket builds one datagram from chunk and writes it. Caller holds mu.
func (u *UDP) sendPacket(chunk []int32) error {
	u.sequenceNum++
	u.packetBuffer.Reset()

	err := binary.Write(u.packetBuffer, binary.BigEndian, u.sequenceNum)
	if err == nil {
		err = binary.Write(u.packetBuffer, binary.BigEndian, u.now())
	}
	if err == nil {
		err = binary.Write(u.packetBuffer, binary.BigEndian, uint16(len(chunk)))
	}
	if err == nil {
		err = binary.Write(u.packetBuffer, binary.BigEndian, chunk)
	}
	if err != nil {
		return fmt.Errorf("failed to pack UDP packet: %w", err)
	}

	if _, err := u.conn.Write(u.packetBuffer.Bytes()); err != nil {
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}

	applog.Debugf("UDP sink: sent packet %d (%d samples)", u.sequenceNum, len(chunk))
	return nil
}

// Close closes the underlying connection.
func (u *UDP) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return nil
	}
	u.closed = true

	applog.Debugf("UDP sink: closing connection to %s", u.conn.RemoteAddr())
	if err := u.conn.Close(); err != nil {
		return fmt.Errorf("failed to close UDP connection: %w", err)
	}
	return nil
}

var _ Sink = (*UDP)(nil)
