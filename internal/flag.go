package internal

// Flag tells a shared add/edit/delete handler which action the route serves.
type Flag int

const (
	FlagAdd Flag = iota
	FlagEdit
	FlagDelete
)

func (f Flag) String() string {
	switch f {
	case FlagEdit:
		return "edit"
	case FlagDelete:
		return "delete"
	default:
		return "add"
	}
}

type flagKey struct{}

// WithFlag attaches f to the route.
//
//	r.GET("/add", h.form, shorty.WithFlag(shorty.FlagAdd))
//	r.GET("/edit/{id}", h.form, shorty.WithFlag(shorty.FlagEdit))
func WithFlag(f Flag) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			c.Set(flagKey{}, f)
			return next(c)
		}
	}
}

// CurrentFlag returns the route flag, FlagAdd when none was attached.
func CurrentFlag(c Context) Flag {
	if f, ok := c.Get(flagKey{}).(Flag); ok {
		return f
	}
	return FlagAdd
}

// PathEdit parses the named path parameter only on FlagEdit routes.
// Any other route, or an unparsable value, yields the zero value.
func PathEdit[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	if CurrentFlag(c) != FlagEdit {
		var zero T
		return zero
	}
	return Param[T](c, name)
}
