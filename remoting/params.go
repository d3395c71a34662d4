package remoting

import (
	"encoding/json"
	"reflect"
)

// splitParams decodes params as a positional array of raw values. Absent or
// null params are an empty list.
func splitParams(params json.RawMessage) ([]json.RawMessage, error) {
	if len(params) == 0 || string(params) == "null" {
		return nil, nil
	}
	if !isArray(params) {
		return nil, invalidParams("params must be a positional array")
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(params, &raw); err != nil {
		return nil, invalidParams("malformed params: %s", err)
	}
	return raw, nil
}

// DecodeParams decodes positional params into args, which must be pointers.
// The number of params must match exactly.
func DecodeParams(params json.RawMessage, args ...interface{}) error {
	raw, err := splitParams(params)
	if err != nil {
		return err
	}
	if len(raw) != len(args) {
		return invalidParams("expected %d params, got %d", len(args), len(raw))
	}
	for i := range raw {
		if err := json.Unmarshal(raw[i], args[i]); err != nil {
			return invalidParams("invalid param %d: %s", i, err)
		}
	}
	return nil
}

// reflectParams decodes positional params into new values of the given types.
func reflectParams(params json.RawMessage, types []reflect.Type) ([]reflect.Value, error) {
	raw, err := splitParams(params)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(types) {
		return nil, invalidParams("expected %d params, got %d", len(types), len(raw))
	}
	values := make([]reflect.Value, 0, len(types))
	for i, t := range types {
		value := reflect.New(t)
		if err := json.Unmarshal(raw[i], value.Interface()); err != nil {
			return nil, invalidParams("invalid param %d: %s", i, err)
		}
		values = append(values, value.Elem())
	}
	return values, nil
}
