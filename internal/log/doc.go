// Package log provides logging with automatic masking of sensitive
// values, built on top of the standard slog package.
//
// Site configurations can carry session cookies and custom auth headers
// for crawling logged-in areas, and those values flow close to the code
// paths that log every request. The SecureHandler masks them before any
// record reaches the output handler:
//   - HTTP credential headers (Authorization, Cookie, X-Api-Key)
//   - values under password/token/secret style keys
//   - values shaped like JWTs, bearer/basic auth, or private keys
//
// Masking applies even in verbose mode, so debug logs stay safe to share.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("request sent",
//	    "cookie", "session=abc123",  // masked
//	    "url", "http://example.com",
//	)
//
//	slog.SetDefault(logger)
package log
