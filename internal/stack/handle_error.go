package stack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/shorty"
	"github.com/dmitrymomot/shorty/internal/user"
	"github.com/dmitrymomot/shorty/internal/views"
	"github.com/dmitrymomot/shorty/middlewares"
)

// Reporter receives critical errors. *Sink implements it.
type Reporter interface {
	Report(ctx context.Context, data LogData) error
}

// ErrorHandler renders HTTP errors below 500 with their own status. Anything
// else is reported to r and shown as a generic 500 page.
func ErrorHandler(r Reporter) shorty.ErrorHandler {
	return func(c shorty.Context, err error) error {
		code := http.StatusInternalServerError
		message := ""
		if he := shorty.AsHTTPError(err); he != nil && !he.Critical() {
			code = he.StatusCode()
			message = he.Message
		} else {
			c.LogError("unhandled error", slog.Any("error", err))
			if rerr := r.Report(c.Context(), Describe(c.Request(), err)); rerr != nil {
				c.LogWarn("error report rejected", slog.Any("error", rerr))
			}
		}
		return renderError(c, code, message)
	}
}

func renderError(c shorty.Context, code int, message string) error {
	title := http.StatusText(code)
	if code == http.StatusInternalServerError {
		title = c.T("error.internal", "Something went wrong")
		message = ""
	}
	page := views.Page{
		Title:   title,
		Content: views.ErrorContent(title, message),
	}
	if err := user.RenderPage(c, code, page); err == nil || c.Written() {
		return err
	}
	page.Bare = true
	return views.Render(c, code, page)
}

// Describe turns err into a report. Panics carry their recovered stack;
// other errors list their wrap chain.
func Describe(r *http.Request, err error) LogData {
	summary := err.Error()
	data := LogData{
		Name:    summary,
		Summary: summary,
	}
	if head, _, ok := strings.Cut(summary, ": "); ok {
		data.Name = head
	}

	var b strings.Builder
	if r != nil {
		fmt.Fprintf(&b, "%s %s\n\n", r.Method, r.URL.RequestURI())
	}
	if pe, ok := middlewares.AsPanicError(err); ok {
		data.Name = fmt.Sprintf("panic: %v", pe.Value)
		b.WriteString(pe.StackTrace())
		if pe.Stack == nil {
			writeChain(&b, err)
		}
	} else {
		writeChain(&b, err)
	}
	data.Details = strings.TrimRight(b.String(), "\n")
	return data
}

func writeChain(b *strings.Builder, err error) {
	for i := 0; err != nil; i++ {
		fmt.Fprintf(b, "%d: %T: %v\n", i, err, err)
		err = errors.Unwrap(err)
	}
}
