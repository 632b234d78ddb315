package action

import (
	"reflect"

	"github.com/viant/structology/conv"
)

var converter = conv.NewConverter(conv.DefaultOptions())

// Decode discriminates the dispatched value: it returns a compound when the value
// has a sequence type, or false when it should be treated as a plain action.
// A compound returned here is not validated.
func Decode(value interface{}) (*Compound, bool) {
	switch actual := value.(type) {
	case *Compound:
		return actual, actual != nil
	case Compound:
		return &actual, true
	case map[string]interface{}:
		return decodeMap(actual)
	}
	return nil, false
}

func decodeMap(aMap map[string]interface{}) (*Compound, bool) {
	types, ok := sequence(aMap["type"])
	if !ok {
		return nil, false
	}
	ret := &Compound{}
	if err := converter.Convert(aMap, ret); err != nil || len(ret.Type) != len(types) {
		ret = &Compound{Payload: aMap["payload"]}
		switch meta := aMap["meta"].(type) {
		case map[string]interface{}:
			ret.Meta = meta
		case Meta:
			ret.Meta = meta
		}
	}
	ret.Type = types
	return ret, true
}

// sequence returns string elements of a slice or array typed value
func sequence(value interface{}) ([]string, bool) {
	if value == nil {
		return nil, false
	}
	if types, ok := value.([]string); ok {
		return types, true
	}
	rValue := reflect.ValueOf(value)
	if kind := rValue.Kind(); kind != reflect.Slice && kind != reflect.Array {
		return nil, false
	}
	ret := make([]string, 0, rValue.Len())
	for i := 0; i < rValue.Len(); i++ {
		item, _ := rValue.Index(i).Interface().(string)
		ret = append(ret, item)
	}
	return ret, true
}
