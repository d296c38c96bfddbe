// Package logger builds the service's slog loggers and provides typed
// attribute helpers so log keys stay consistent across components.
//
//	log := logger.New(
//		logger.WithFormat(logger.FormatJSON),
//		logger.WithLevel(slog.LevelInfo),
//		logger.WithAttr(slog.String("service", "authsvc")),
//	)
//
//	log.Error("otp dispatch failed",
//		logger.Component("otp"),
//		logger.UserID(userID.String()),
//		logger.Error(err),
//	)
package logger
