package protocol

import (
	"reflect"

	jsoniter "github.com/json-iterator/go"

	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/storage"
)

// jsonAPI uses jsoniter's ConfigCompatibleWithStandardLibrary over
// encoding/json for faster decode of arbitrary manifest/metadata
// payloads.
var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonPayload[T any] struct {
	Value T
}

// JSON decodes fetched bytes into T with jsoniter and attaches the
// result, for an arbitrary struct type instead of one fixed schema.
type JSON[T any] struct {
	ProtocolName string
}

func NewJSON[T any](name string) *JSON[T] {
	return &JSON[T]{ProtocolName: name}
}

func (j *JSON[T]) Name() string { return j.ProtocolName }

func (j *JSON[T]) ProcessBytes(h handle.Handle, s *storage.Store, data []byte) error {
	var value T
	if err := jsonAPI.Unmarshal(data, &value); err != nil {
		return err
	}
	s.Attach(h.Entity, jsonPayload[T]{Value: value})
	return nil
}

func (j *JSON[T]) ProduceBytes(h handle.Handle, s *storage.Store) ([]byte, error) {
	v, ok := s.Get(h.Entity, reflect.TypeOf(jsonPayload[T]{}))
	if !ok {
		return nil, nil
	}
	return jsonAPI.Marshal(v.(jsonPayload[T]).Value)
}
