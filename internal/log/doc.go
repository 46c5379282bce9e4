// Package log builds the slog logger used by listat. Its handler redacts
// credentials, because the sources file may hold session cookies for private
// LiveInternet counters.
package log
