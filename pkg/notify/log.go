package notify

import "go.uber.org/zap"

// LogHandler mirrors notifications into the service log. Errors are logged
// at warn level: they are user-facing outcomes, not service faults.
func LogHandler(logger *zap.Logger) Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(n Notification) {
		fields := []zap.Field{
			zap.String("draft_id", n.DraftID),
			zap.String("level", string(n.Level)),
			zap.String("message", n.Message),
		}
		if n.ComponentID != "" {
			fields = append(fields, zap.String("component_id", n.ComponentID))
		}
		switch n.Level {
		case LevelError, LevelWarning:
			logger.Warn("editor notification", fields...)
		default:
			logger.Debug("editor notification", fields...)
		}
	}
}
