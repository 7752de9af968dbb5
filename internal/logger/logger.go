// Package logger builds the zap logger shared by the binaries.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production JSON logger when env is "production" or "release",
// otherwise a development console logger.
func New(env string) (*zap.Logger, error) {
	var config zap.Config
	switch env {
	case "production", "release":
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return config.Build()
}

// MaskAddress shortens a base58 address to its first and last four characters.
func MaskAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}

// Mint is a zap field carrying a masked mint address.
func Mint(addr string) zap.Field {
	return zap.String("mint", MaskAddress(addr))
}
