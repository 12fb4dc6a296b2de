package logging

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// statusRecorder remembers the status code a plain handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingWrapper does for plain net/http routes what Middleware does for huma
// operations. A handler error is logged at Error level when the handler wrote a
// 5xx status and at Warn level otherwise.
func LoggingWrapper(
	loggingName string,
	log *logrus.Logger,
	handler func(http.ResponseWriter, *http.Request, *LogData) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		logData := NewLogData(log)
		logData.AddData("method", req.Method)
		logData.AddData("path", req.URL.Path)
		log.Infof("Handler.%v.Start", loggingName)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		endTimer := logData.AddTiming("duration")
		err := handler(rec, req.WithContext(WithLogData(req.Context(), logData)), logData)
		endTimer()
		logData.AddData("status", rec.status)

		switch {
		case err != nil && rec.status >= http.StatusInternalServerError:
			logData.Log().WithError(err).Errorf("Handler.%v.Error", loggingName)
		case err != nil:
			logData.Log().WithError(err).Warnf("Handler.%v.Rejected", loggingName)
		default:
			logData.Log().Infof("Handler.%v.Complete", loggingName)
		}
	}
}
