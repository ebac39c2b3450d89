// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/postman-open-technologies/httpbin/config/key"

	"github.com/go-viper/mapstructure/v2"
)

// Store receives the key value pairs produced by a [Source].
type Store interface {
	Set(key.Keyer, any) error
}

// Source is one layer of configuration, e.g. the embedded defaults,
// a config file or the HTTPBIN_ environment.
type Source interface {
	Apply(Store) error
}

// SourceFunc adapts a function to the [Source] interface.
type SourceFunc func(Store) error

// Apply implements the [Source] interface.
func (f SourceFunc) Apply(store Store) error {
	return f(store)
}

// Manager holds the layered result of every [Source] passed to [Read].
type Manager struct {
	values Map
}

// Read applies srcs in order so that later layers win. Nil sources are
// skipped, which lets callers pass optional layers such as an unset
// --config flag without branching.
func Read(srcs ...Source) (*Manager, error) {
	values := make(Map)
	for _, src := range srcs {
		if src == nil {
			continue
		}
		if err := src.Apply(values); err != nil {
			return nil, err
		}
	}
	return &Manager{values: values}, nil
}

// Unmarshal decodes the layered values into v, which must be a pointer to a
// struct whose fields are named by "config" tags. Scalars are weakly typed
// since environment variables always arrive as strings.
func (m *Manager) Unmarshal(v any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		Result:           v,
		WeaklyTypedInput: true,
		DecodeHook:       firstApplicable(decodeText, decodeDuration),
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(m.values))
}

// TypeCoercionError is returned by [Manager.Unmarshal] when a value, such as
// a logging level of "LOUD", can not be decoded into its field type.
type TypeCoercionError struct {
	From  reflect.Type
	To    reflect.Type
	Cause error
}

// Error implements the error interface.
func (e TypeCoercionError) Error() string {
	return fmt.Sprintf("config: can not decode %s into %s: %s", e.From, e.To, e.Cause)
}

// Unwrap implements the implicit interface for usage with errors.Is and errors.As.
func (e TypeCoercionError) Unwrap() error {
	return e.Cause
}

// errNotApplicable tells firstApplicable to try the next hook.
var errNotApplicable = errors.New("decode hook not applicable")

type decodeHook func(from, to reflect.Type, data any) (any, error)

func firstApplicable(hooks ...decodeHook) mapstructure.DecodeHookFuncValue {
	return func(from, to reflect.Value) (any, error) {
		for _, hook := range hooks {
			v, err := hook(from.Type(), to.Type(), from.Interface())
			if errors.Is(err, errNotApplicable) {
				continue
			}
			if err != nil {
				return nil, TypeCoercionError{
					From:  from.Type(),
					To:    to.Type(),
					Cause: err,
				}
			}
			return v, nil
		}
		return from.Interface(), nil
	}
}

// decodeText covers types like slog.Level and otelconfig.Exporter.
func decodeText(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return nil, errNotApplicable
	}
	ptr := reflect.New(to)
	u, ok := ptr.Interface().(encoding.TextUnmarshaler)
	if !ok {
		return nil, errNotApplicable
	}
	if err := u.UnmarshalText([]byte(reflect.ValueOf(data).String())); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

var durationType = reflect.TypeOf(time.Duration(0))

func decodeDuration(from, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return nil, errNotApplicable
	}
	switch from.Kind() {
	case reflect.String:
		return time.ParseDuration(reflect.ValueOf(data).String())
	case reflect.Int, reflect.Int64:
		return time.Duration(reflect.ValueOf(data).Int()), nil
	default:
		return nil, errNotApplicable
	}
}
