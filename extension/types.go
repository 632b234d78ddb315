package extension

import (
	"reflect"
	"strings"
	"sync"

	"github.com/viant/x"
)

// Types represents registry of payload data types
type Types struct {
	x.Registry
	aliases map[string]*x.Type
	mux     sync.RWMutex
}

// Register adds a data type to the registry, the type is also addressable by its simple name
func (t *Types) Register(dataType *x.Type) {
	if dataType == nil || dataType.Type == nil {
		return
	}
	t.Registry.Register(dataType)
	rType := dataType.Type
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	t.mux.Lock()
	defer t.mux.Unlock()
	t.aliases[rType.Name()] = dataType
	if pkgPath := rType.PkgPath(); pkgPath != "" {
		t.aliases[pkgPath+"."+rType.Name()] = dataType
		if idx := strings.LastIndex(pkgPath, "/"); idx != -1 {
			t.aliases[pkgPath[idx+1:]+"."+rType.Name()] = dataType
		}
	}
}

// Lookup returns a data type by name; "[]" and "map[string]" modifiers are supported
func (t *Types) Lookup(dataType string) *x.Type {
	typeModifier := ""
	if idx := strings.LastIndex(dataType, "]"); idx != -1 {
		typeModifier = dataType[:idx+1]
		dataType = dataType[idx+1:]
	}
	t.mux.RLock()
	ret := t.aliases[dataType]
	t.mux.RUnlock()
	if ret == nil {
		return nil
	}
	rType := ret.Type
	switch strings.TrimSpace(typeModifier) {
	case "[]":
		rType = reflect.SliceOf(rType)
	case "map[string]":
		rType = reflect.MapOf(reflect.TypeOf(""), rType)
	}
	if rType != ret.Type {
		return x.NewType(rType)
	}
	return ret
}

// NewTypes creates a new types
func NewTypes(options ...x.RegistryOption) *Types {
	return &Types{
		Registry: *x.NewRegistry(options...),
		aliases:  make(map[string]*x.Type),
	}
}
