package protocol

import (
	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/storage"
)

// String is the payload component Text attaches: the UTF-8 decoded
// contents of the fetched bytes.
type String struct {
	Value string
}

// Text decodes bytes as UTF-8 and attaches String. It never fails:
// string([]byte) does no validation, so invalid UTF-8 sequences are
// kept byte for byte in the String value.
type Text struct{}

func (Text) Name() string { return "text" }

func (Text) ProcessBytes(h handle.Handle, s *storage.Store, data []byte) error {
	s.Attach(h.Entity, String{Value: string(data)})
	return nil
}

func (Text) ProduceBytes(h handle.Handle, s *storage.Store) ([]byte, error) {
	v, ok := s.Get(h.Entity, stringType)
	if !ok {
		return nil, nil
	}
	return []byte(v.(String).Value), nil
}

// Raw is the payload component Bytes attaches: the fetched bytes
// verbatim.
type Raw struct {
	Value []byte
}

// Bytes passes the fetched bytes through unchanged, attached as Raw.
type Bytes struct{}

func (Bytes) Name() string { return "bytes" }

func (Bytes) ProcessBytes(h handle.Handle, s *storage.Store, data []byte) error {
	s.Attach(h.Entity, Raw{Value: data})
	return nil
}

func (Bytes) ProduceBytes(h handle.Handle, s *storage.Store) ([]byte, error) {
	v, ok := s.Get(h.Entity, rawType)
	if !ok {
		return nil, nil
	}
	return v.(Raw).Value, nil
}
