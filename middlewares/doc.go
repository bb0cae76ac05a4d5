// Package middlewares provides the request middleware shared by the admin
// and public apps.
//
// Recover turns panics into PanicError values that the error handler reports
// as 500s and the error log stores with their stack. RequestID tags requests
// and, through RequestIDExtractor, every log record made with the request
// context. Timeout attaches a deadline without spawning goroutines.
//
//	app := shorty.New(
//	    shorty.WithLogger(logger.New(cfg.Log, os.Stdout, middlewares.RequestIDExtractor())),
//	    shorty.WithMiddleware(
//	        middlewares.Recover(),
//	        middlewares.RequestID(),
//	        middlewares.SecureHeaders(middlewares.SecureConfig{}),
//	        middlewares.HTMX(),
//	        middlewares.I18n(bundle, middlewares.WithI18nNamespace("admin")),
//	    ),
//	)
//
// # Language
//
// I18n picks the language from ?lang, the lang cookie and Accept-Language,
// in that order, and exposes the translator to handlers and rendered views.
//
// # CSRF
//
// CSRFIssue, CSRFHeaderCheck and CSRFHeaderCheckStrict are route middleware. Form posts
// without the X-CSRF-Token header are verified by Context.Bind instead.
//
// # Rate limiting
//
// RateLimit counts requests per client IP with httprate and answers excess
// requests with a 429 HTTPError.
package middlewares
