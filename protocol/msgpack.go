package protocol

import (
	"reflect"

	"github.com/tinylib/msgp/msgp"

	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/storage"
)

// msgpPayload wraps a decoded msgp value as its own component type, so
// each MsgPack instance's payload is addressable independently of
// Text/Bytes/Raw (protocol.MsgPack[T] handle.Access[msgpPayload[T]]).
type msgpPayload[T any] struct {
	Value T
}

// msgpCodec is the subset of tinylib/msgp's generated interface MsgPack
// needs: a pointer to T must implement both directions, which every
// msgp-generated type does.
type msgpCodec[T any] interface {
	*T
	msgp.Unmarshaler
	msgp.Marshaler
}

// MsgPack decodes fetched bytes as msgp-generated type T (see
// github.com/tinylib/msgp) and attaches the result. U is the pointer
// type constraint letting Go infer *T implements the msgp interfaces
// without an explicit type witness at each call site.
type MsgPack[T any, U msgpCodec[T]] struct {
	ProtocolName string
}

func NewMsgPack[T any, U msgpCodec[T]](name string) *MsgPack[T, U] {
	return &MsgPack[T, U]{ProtocolName: name}
}

func (m *MsgPack[T, U]) Name() string { return m.ProtocolName }

func (m *MsgPack[T, U]) ProcessBytes(h handle.Handle, s *storage.Store, data []byte) error {
	var value T
	if _, err := U(&value).UnmarshalMsg(data); err != nil {
		return err
	}
	s.Attach(h.Entity, msgpPayload[T]{Value: value})
	return nil
}

func (m *MsgPack[T, U]) ProduceBytes(h handle.Handle, s *storage.Store) ([]byte, error) {
	v, ok := s.Get(h.Entity, msgpPayloadType[T]())
	if !ok {
		return nil, nil
	}
	value := v.(msgpPayload[T]).Value
	return U(&value).MarshalMsg(nil)
}

func msgpPayloadType[T any]() reflect.Type {
	return reflect.TypeOf(msgpPayload[T]{})
}
