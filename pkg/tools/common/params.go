package common

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// The helpers below read typed fields out of an already-parsed component
// parameter document. The document was decoded into a plain map by the
// configuration layer, so the cheapest uniform accessor is to marshal it
// once and let gjson walk the path, which also supports nested fields
// like "similarity.weight".

func lookup(params map[string]interface{}, path string) (gjson.Result, bool) {
	raw, err := json.Marshal(params)
	if err != nil {
		return gjson.Result{}, false
	}
	val := gjson.GetBytes(raw, path)
	if !val.Exists() {
		return gjson.Result{}, false
	}
	return val, true
}

// ParamInt returns the int field at path, or def when absent
func ParamInt(params map[string]interface{}, path string, def int) int {
	val, existed := lookup(params, path)
	if !existed {
		return def
	}
	return int(val.Int())
}

// ParamFloat returns the float field at path, or def when absent
func ParamFloat(params map[string]interface{}, path string, def float64) float64 {
	val, existed := lookup(params, path)
	if !existed {
		return def
	}
	return val.Float()
}

// ParamString returns the string field at path, or def when absent
func ParamString(params map[string]interface{}, path string, def string) string {
	val, existed := lookup(params, path)
	if !existed {
		return def
	}
	return val.String()
}

// ParamBool returns the bool field at path, or def when absent
func ParamBool(params map[string]interface{}, path string, def bool) bool {
	val, existed := lookup(params, path)
	if !existed {
		return def
	}
	return val.Bool()
}
