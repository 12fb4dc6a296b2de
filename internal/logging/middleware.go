package logging

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"
)

// Middleware gives every huma operation a LogData and logs its start and
// completion under Handler.<OperationID>.
func Middleware(log *logrus.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		name := ctx.Operation().OperationID
		logData := NewLogData(log)
		logData.AddData("method", ctx.Method())
		logData.AddData("path", ctx.URL().Path)
		log.Infof("Handler.%v.Start", name)

		endTimer := logData.AddTiming("duration")
		next(huma.WithContext(ctx, WithLogData(ctx.Context(), logData)))
		endTimer()

		status := ctx.Status()
		logData.AddData("status", status)
		switch {
		case status >= 500:
			logData.Log().Errorf("Handler.%v.Error", name)
		case status >= 400:
			logData.Log().Warnf("Handler.%v.Rejected", name)
		default:
			logData.Log().Infof("Handler.%v.Complete", name)
		}
	}
}
