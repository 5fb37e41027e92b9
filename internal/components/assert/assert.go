// Package assert panics on wiring mistakes, never on bad input.
package assert

import (
	"fmt"
	"reflect"
)

// NotNil panics if `value` is nil, including a typed nil pointer stored in an interface.
func NotNil(name string, value any) {
	if value == nil {
		panic(fmt.Sprintf("%s must not be nil", name))
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if v.IsNil() {
			panic(fmt.Sprintf("%s must not be nil", name))
		}
	}
}

func NotEmpty(name, str string) {
	if str == "" {
		panic(fmt.Sprintf("%s must not be empty", name))
	}
}
