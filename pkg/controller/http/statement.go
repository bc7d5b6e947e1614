package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/dakala/h5p-xapi/pkg/usecase"
	"github.com/dakala/h5p-xapi/pkg/utils/errutil"
	"github.com/dakala/h5p-xapi/pkg/utils/safe"
)

// statementHandler ingests one statement per call and answers with an
// empty JSON acknowledgement, mirroring what the browser listener
// expects.
func statementHandler(recorder StatementRecorder, maxBodyBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		uid, ok := UserIDFrom(ctx)
		if !ok {
			errutil.HandleHTTP(ctx, w, goerr.New("no authenticated user in context"), http.StatusUnauthorized)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			status := http.StatusBadRequest
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read statement body"), status)
			return
		}

		if _, err := recorder.RecordStatement(ctx, body, &uid); err != nil {
			status := http.StatusInternalServerError
			if usecase.IsMalformed(err) {
				status = http.StatusBadRequest
			}
			errutil.HandleHTTP(ctx, w, err, status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		safe.Write(ctx, w, []byte("{}"))
	}
}

// listenerSettingsHandler serves the tracking settings the browser
// listener needs to decide what to forward.
func listenerSettingsHandler(settings ListenerSettings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := json.Marshal(settings)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal listener settings"), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		safe.Write(r.Context(), w, data)
	}
}
