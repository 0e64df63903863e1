// Package logging builds the service's structured logger.
//
// The returned *slog.Logger is handed to every component. Its handler chain
// adds request-scoped fields carried in the context (request id, slot,
// layout id) and, when enabled, redacts secrets and email addresses from
// attribute values.
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json", RedactPII: true})
//	if err != nil {
//	    return err
//	}
//	ctx = logging.WithRequestID(ctx, id)
//	logger.InfoContext(ctx, "slot rendered", "fragments", 2)
package logging
