package common

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParamHelpers(t *testing.T) {
	params := map[string]interface{}{
		"path":             "ratings.txt",
		"similarityWeight": 0.7,
		"num":              10,
		"nested":           map[string]interface{}{"enabled": true},
	}

	Convey("present fields are read with their type", t, func() {
		So(ParamString(params, "path", ""), ShouldEqual, "ratings.txt")
		So(ParamFloat(params, "similarityWeight", 0.5), ShouldEqual, 0.7)
		So(ParamInt(params, "num", 1), ShouldEqual, 10)
		So(ParamBool(params, "nested.enabled", false), ShouldBeTrue)
	})

	Convey("absent fields fall back to the default", t, func() {
		So(ParamString(params, "missing", "fallback"), ShouldEqual, "fallback")
		So(ParamFloat(params, "missing", 0.5), ShouldEqual, 0.5)
		So(ParamInt(params, "missing", 1), ShouldEqual, 1)
		So(ParamBool(params, "missing", true), ShouldBeTrue)
	})

	Convey("a nil params map only yields defaults", t, func() {
		So(ParamString(nil, "path", "fallback"), ShouldEqual, "fallback")
	})
}
