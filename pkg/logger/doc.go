// Package logger builds *slog.Logger instances for uploadkit services.
//
// A single factory, New, applies functional options on top of production
// defaults (JSON, info level, stdout) and wraps the resulting handler in a
// LogHandlerDecorator that injects request-scoped values, such as the request
// id, from context.Context on every record.
//
// Attribute helpers in attr.go keep key names consistent across packages:
// Element, Filename, Size and ErrorCodes describe uploaded files, while Error
// and Errors drop out entirely when given nil errors:
//
//	log.WarnContext(ctx, "upload not saved",
//		logger.Element(f.Element()),
//		logger.ErrorCodes(101, 103),
//		logger.Error(err),
//	)
//
// # Usage
//
//	import "github.com/dmitrymomot/uploadkit/pkg/logger"
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.AppEnv, "uploadd"),
//		logger.WithLevelName(cfg.LogLevel),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
// # Configuration
//
//   - WithDevelopment / WithStaging / WithProduction / WithEnvironment: presets per environment
//   - WithFormat / WithTextFormatter / WithJSONFormatter: output format
//   - WithLevel / WithLevelName: minimum level
//   - WithAttr: static attributes
//   - WithContextExtractors / WithContextValue: attributes pulled from context
//
// Invalid formats and level names panic so misconfiguration stops startup.
package logger
