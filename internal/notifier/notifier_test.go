package notifier

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ds124wfegd/facility-booking/internal/entity"
	"github.com/ds124wfegd/facility-booking/internal/monitor"
	"github.com/ds124wfegd/facility-booking/internal/protocol"
)

type fakePacketWriter struct {
	writes []sentPacket
}

type sentPacket struct {
	data []byte
	addr *net.UDPAddr
}

func (w *fakePacketWriter) WriteToUDP(b []byte, addr *net.UDPAddr) (int, error) {
	copied := make([]byte, len(b))
	copy(copied, b)
	w.writes = append(w.writes, sentPacket{data: copied, addr: addr})
	return len(b), nil
}

func testChange(status entity.BookingStatus) entity.BookingChange {
	return entity.BookingChange{
		Action:       entity.ChangeActionInsert,
		BookingID:    14,
		FacilityName: "Meeting Room A",
		StartDay:     entity.Tuesday, StartHour: 10,
		EndDay: entity.Tuesday, EndHour: 12,
		Status: status,
	}
}

// TestDispatch тестирует доставку события живому подписчику
// в конверте исходного запроса мониторинга
func TestDispatch(t *testing.T) {
	conn := &fakePacketWriter{}
	registry := monitor.NewRegistry(24 * time.Hour)
	n := New(nil, registry, conn, nil)

	addr := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 40000}
	req := &protocol.Message{RequestID: 21, Operation: protocol.OpMonitorFacility}
	registry.Subscribe("Meeting Room A", addr, time.Hour, req)

	n.Dispatch(testChange(entity.BookingStatusBooked))

	require.Len(t, conn.writes, 1)
	push := conn.writes[0].data
	assert.Same(t, addr, conn.writes[0].addr)

	// уведомление оформлено как ответ на исходный запрос мониторинга
	assert.Equal(t, byte(0x00), push[0])
	assert.Equal(t, uint32(21), binary.BigEndian.Uint32(push[1:5]))
	assert.Equal(t, protocol.OpMonitorFacility, push[5])
	assert.Equal(t, protocol.CodeOK, push[6])
	assert.Equal(t, "New booking 14 on Meeting Room A: Tuesday 10:00-12:00", string(push[11:]))
}

// TestDispatchSkipsExpired тестирует, что истекшие подписки ничего не получают
func TestDispatchSkipsExpired(t *testing.T) {
	conn := &fakePacketWriter{}
	registry := monitor.NewRegistry(24 * time.Hour)
	n := New(nil, registry, conn, nil)

	addr := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 40000}
	registry.Subscribe("Meeting Room A", addr, 0, &protocol.Message{})

	n.Dispatch(testChange(entity.BookingStatusBooked))
	assert.Empty(t, conn.writes)
}

// TestDispatchIgnoresUnconfirmed тестирует фильтрацию событий
// по неподтвержденным бронированиям
func TestDispatchIgnoresUnconfirmed(t *testing.T) {
	conn := &fakePacketWriter{}
	registry := monitor.NewRegistry(24 * time.Hour)
	n := New(nil, registry, conn, nil)

	addr := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 40000}
	registry.Subscribe("Meeting Room A", addr, time.Hour, &protocol.Message{})

	n.Dispatch(testChange(entity.BookingStatusFailed))
	n.Dispatch(testChange(entity.BookingStatusCancelled))
	assert.Empty(t, conn.writes)
}

// TestDispatchOtherFacility тестирует, что подписка на другой объект молчит
func TestDispatchOtherFacility(t *testing.T) {
	conn := &fakePacketWriter{}
	registry := monitor.NewRegistry(24 * time.Hour)
	n := New(nil, registry, conn, nil)

	addr := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 40000}
	registry.Subscribe("Lecture Hall", addr, time.Hour, &protocol.Message{})

	n.Dispatch(testChange(entity.BookingStatusBooked))
	assert.Empty(t, conn.writes)
}
