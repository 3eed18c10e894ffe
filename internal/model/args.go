package model

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Arg is one raw argument as the host passed it.
type Arg struct {
	Key   string
	Value any
}

// RawArgs keeps raw arguments in call order. Order matters: it drives the order of the
// rendered HTML attributes and the cache key.
type RawArgs []Arg

// Lookup returns the value of an exactly-named argument. A nil value counts as absent.
func (r RawArgs) Lookup(key string) (any, bool) {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i].Key == key {
			return r[i].Value, r[i].Value != nil
		}
	}
	return nil, false
}

// Has reports whether the key is present with a non-nil value.
func (r RawArgs) Has(key string) bool {
	_, ok := r.Lookup(key)
	return ok
}

func (r RawArgs) MarshalJSON() ([]byte, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, a := range r {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(a.Key)
		stream.WriteVal(a.Value)
	}
	stream.WriteObjectEnd()

	if stream.Error != nil {
		return nil, fmt.Errorf("failed to marshal raw args: %w", stream.Error)
	}

	return append([]byte(nil), stream.Buffer()...), nil
}

func (r *RawArgs) UnmarshalJSON(data []byte) error {
	iter := json.BorrowIterator(data)
	defer json.ReturnIterator(iter)

	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return errors.New("raw args must be a JSON object")
	}

	args := RawArgs{}
	iter.ReadMapCB(func(it *jsoniter.Iterator, key string) bool {
		args = append(args, Arg{Key: key, Value: it.Read()})
		return it.Error == nil
	})
	if iter.Error != nil {
		return fmt.Errorf("failed to unmarshal raw args: %w", iter.Error)
	}

	*r = args
	return nil
}
