package hamlet

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

type Hamlet struct {
	testing *testing.T
	sense   bool
}

func word(sense bool) string {
	if sense {
		return "be"
	}
	return "not be"
}

// Specifications gives the positive and negative assertion halves for
// one test, in that order.
func Specifications(t *testing.T) (*Hamlet, *Hamlet) {
	t.Helper()
	return &Hamlet{t, true}, &Hamlet{t, false}
}

func (it *Hamlet) check(outcome bool, form string, details ...interface{}) {
	it.testing.Helper()
	if outcome != it.sense {
		it.testing.Errorf(form, details...)
	}
}

func (it *Hamlet) True(value bool) {
	it.testing.Helper()
	it.check(value, "Expected %v to %s true!", value, word(it.sense))
}

func (it *Hamlet) Nil(value interface{}) {
	it.testing.Helper()
	defined := value != nil
	if defined {
		indirect := reflect.ValueOf(value)
		switch indirect.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
			defined = !indirect.IsNil()
		}
	}
	it.check(!defined, "Expected %#v to %s nil!", value, word(it.sense))
}

func (it *Hamlet) Equal(expected, actual interface{}) {
	it.testing.Helper()
	it.check(reflect.DeepEqual(expected, actual), "Expected %#v to %s %#v!", actual, word(it.sense), expected)
}

func (it *Hamlet) Text(expected string, actual interface{}) {
	it.testing.Helper()
	it.Equal(expected, fmt.Sprintf("%v", actual))
}

func (it *Hamlet) Contains(fragment string, actual string) {
	it.testing.Helper()
	it.check(strings.Contains(actual, fragment), "Expected %q to %s part of %q!", fragment, word(it.sense), actual)
}

func (it *Hamlet) Panic(todo func()) {
	it.testing.Helper()
	defer func() {
		it.testing.Helper()
		caught := recover()
		it.check(caught != nil, "Expected call to %s panic!", word(it.sense))
	}()
	todo()
}
