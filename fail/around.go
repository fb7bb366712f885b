package fail

import "fmt"

type crash struct {
	message error
}

func (it *crash) Error() string {
	return it.message.Error()
}

// Around converts crashes from fail.On and fail.Fast back into normal
// error returns. Use as "defer fail.Around(&err)" at function entry.
// Foreign panics pass through untouched.
func Around(err *error) {
	catch := recover()
	if catch == nil {
		return
	}
	unwrap, ok := catch.(*crash)
	if ok {
		*err = unwrap.message
		return
	}
	panic(catch)
}

func On(condition bool, form string, details ...interface{}) {
	if condition {
		panic(&crash{fmt.Errorf(form, details...)})
	}
}

func Fast(err error) {
	if err != nil {
		panic(&crash{err})
	}
}
