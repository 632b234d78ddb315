package action

// PoliciesKey is the meta key listing the policies applied to a compound action
const PoliciesKey = "policies"

// Meta represents action metadata
type Meta map[string]interface{}

// Clone returns a shallow copy of the meta
func (m Meta) Clone() Meta {
	ret := make(Meta, len(m)+1)
	for k, v := range m {
		ret[k] = v
	}
	return ret
}

// Merge returns a new meta with values applied over the existing keys
func (m Meta) Merge(values map[string]interface{}) Meta {
	ret := m.Clone()
	for k, v := range values {
		ret[k] = v
	}
	return ret
}

// With returns a new meta with a single key set
func (m Meta) With(key string, value interface{}) Meta {
	ret := m.Clone()
	ret[key] = value
	return ret
}

// Policies returns the ordered policy names, non string entries are ignored
func (m Meta) Policies() []string {
	if m == nil {
		return nil
	}
	switch actual := m[PoliciesKey].(type) {
	case []string:
		return append([]string(nil), actual...)
	case []interface{}:
		var ret []string
		for _, item := range actual {
			if name, ok := item.(string); ok {
				ret = append(ret, name)
			}
		}
		return ret
	case string:
		if actual == "" {
			return nil
		}
		return []string{actual}
	}
	return nil
}
