package builtin

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/viant/hamal/internal/clock"
	"github.com/viant/hamal/internal/idgen"
	"github.com/viant/hamal/model/action"
	"github.com/viant/hamal/policy"
)

// Builtin policy kinds.
const (
	KindMeta      = "meta"
	KindTimestamp = "timestamp"
	KindCorrelate = "correlate"
	KindError     = "error"
	KindDecode    = "decode"
	KindSecret    = "secret"
)

type (
	metaParams struct {
		Values map[string]interface{} `json:"values"`
	}

	timestampParams struct {
		Key    string `json:"key"`
		Format string `json:"format"`
	}

	keyParams struct {
		Key        string `json:"key"`
		MessageKey string `json:"messageKey"`
	}

	decodeParams struct {
		Type string `json:"type"`
	}
)

func newMeta(ctx context.Context, builder *Builder, config *policy.Config) (policy.Func, error) {
	params := &metaParams{}
	if err := builder.Params(config, params); err != nil {
		return nil, err
	}
	return func(store policy.Store, done policy.Done) policy.Done {
		return func(anAction *action.Action, err error, response interface{}) {
			done(anAction.WithMeta(anAction.Meta.Merge(params.Values)), err, response)
		}
	}, nil
}

func newTimestamp(ctx context.Context, builder *Builder, config *policy.Config) (policy.Func, error) {
	params := &timestampParams{}
	if err := builder.Params(config, params); err != nil {
		return nil, err
	}
	if params.Key == "" {
		params.Key = "requestedAt"
		if config.Point() == policy.OnResponse {
			params.Key = "respondedAt"
		}
	}
	return func(store policy.Store, done policy.Done) policy.Done {
		return func(anAction *action.Action, err error, response interface{}) {
			done(anAction.WithMeta(anAction.Meta.With(params.Key, formatTime(clock.Now(), params.Format))), err, response)
		}
	}, nil
}

func formatTime(ts time.Time, format string) interface{} {
	switch format {
	case "":
		return ts
	case "unix":
		return ts.Unix()
	case "unixMilli":
		return ts.UnixMilli()
	case "rfc3339":
		return ts.Format(time.RFC3339)
	}
	return ts.Format(format)
}

func newCorrelate(ctx context.Context, builder *Builder, config *policy.Config) (policy.Func, error) {
	params := &keyParams{}
	if err := builder.Params(config, params); err != nil {
		return nil, err
	}
	if params.Key == "" {
		params.Key = "correlationId"
	}
	return func(store policy.Store, done policy.Done) policy.Done {
		return func(anAction *action.Action, err error, response interface{}) {
			if value, ok := anAction.Meta[params.Key]; ok && value != "" && value != nil {
				done(anAction, err, response)
				return
			}
			done(anAction.WithMeta(anAction.Meta.With(params.Key, idgen.New())), err, response)
		}
	}, nil
}

func newError(ctx context.Context, builder *Builder, config *policy.Config) (policy.Func, error) {
	params := &keyParams{}
	if err := builder.Params(config, params); err != nil {
		return nil, err
	}
	if params.Key == "" {
		params.Key = "error"
	}
	if params.MessageKey == "" {
		params.MessageKey = "errorMessage"
	}
	return func(store policy.Store, done policy.Done) policy.Done {
		return func(anAction *action.Action, err error, response interface{}) {
			if err == nil {
				done(anAction, err, response)
				return
			}
			meta := anAction.Meta.Merge(map[string]interface{}{params.Key: true, params.MessageKey: err.Error()})
			done(anAction.WithMeta(meta), err, response)
		}
	}, nil
}

func newDecode(ctx context.Context, builder *Builder, config *policy.Config) (policy.Func, error) {
	params := &decodeParams{}
	if err := builder.Params(config, params); err != nil {
		return nil, err
	}
	if params.Type == "" {
		return nil, fmt.Errorf("decode type was empty")
	}
	aType := builder.types.Lookup(params.Type)
	if aType == nil {
		return nil, fmt.Errorf("type %v not registered", params.Type)
	}
	rType := aType.Type
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return func(store policy.Store, done policy.Done) policy.Done {
		return func(anAction *action.Action, err error, response interface{}) {
			if err != nil || anAction.Payload == nil {
				done(anAction, err, response)
				return
			}
			instance := reflect.New(rType)
			if cErr := builder.converter.Convert(anAction.Payload, instance.Interface()); cErr != nil {
				done(anAction, fmt.Errorf("failed to decode payload as %v: %w", params.Type, cErr), response)
				return
			}
			value := instance.Interface()
			if rType.Kind() != reflect.Struct {
				value = instance.Elem().Interface()
			}
			done(anAction.WithPayload(value), err, value)
		}
	}, nil
}
