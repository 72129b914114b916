// Package protocol implements the binary envelope and per-operation
// payload encodings of the facility booking protocol.
//
// Request envelope:  requestType(1) | requestID(4 BE) | operation(1) | payload
// Reply envelope:    0x00(1) | requestID(4 BE) | operation(1) | errorCode(1) | payloadLength(4 BE) | payload
package protocol

import (
	"encoding/binary"
	"errors"
)

// Operation codes
const (
	OpQueryAvailability byte = 1
	OpBookFacility      byte = 2
	OpShiftBooking      byte = 3
	OpMonitorFacility   byte = 4
	OpListBookings      byte = 5
	OpAccessCode        byte = 6
)

// Wire error codes (operation-scoped, 0 = success)
const (
	CodeOK         byte = 0
	CodeConflict   byte = 1 // booking conflict / access code already issued
	CodeValidation byte = 2 // shift out of range / requester is not the owner (op 6)
	CodeNotOwner   byte = 3 // requester is not the owner (op 3)
	CodeNotFound   byte = 4 // booking not found
)

const headerLen = 6

var (
	ErrShortMessage     = errors.New("protocol: message shorter than header")
	ErrTruncatedPayload = errors.New("protocol: payload truncated")
	ErrUnknownOperation = errors.New("protocol: unknown operation code")
)

// Message — декодированный конверт входящей датаграммы
type Message struct {
	RequestType byte
	RequestID   uint32
	Operation   byte
	Payload     []byte
}

// Decode разбирает сырые байты датаграммы на поля конверта.
// Данные короче шестибайтового заголовка отклоняются.
func Decode(data []byte) (*Message, error) {
	if len(data) < headerLen {
		return nil, ErrShortMessage
	}
	return &Message{
		RequestType: data[0],
		RequestID:   binary.BigEndian.Uint32(data[1:5]),
		Operation:   data[5],
		Payload:     data[headerLen:],
	}, nil
}

// EncodeReply собирает ответный конверт для исходного запроса.
// requestID и operation отражаются из запроса, чтобы клиент мог
// сопоставить ответ поверх неупорядоченного транспорта.
func EncodeReply(req *Message, errCode byte, payload []byte) []byte {
	buf := make([]byte, 0, headerLen+5+len(payload))
	buf = append(buf, 0x00)
	buf = binary.BigEndian.AppendUint32(buf, req.RequestID)
	buf = append(buf, req.Operation, errCode)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(payload)))
	buf = append(buf, payload...)
	return buf
}
