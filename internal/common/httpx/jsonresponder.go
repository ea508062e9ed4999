package httpx

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

// SendJsonRsp sends msg as JSON with the given status code. Strings and byte
// slices that already hold valid JSON are written as-is.
func SendJsonRsp(ctx context.Context, w http.ResponseWriter, statusCode int, msg any) {
	var msgJson []byte
	switch m := msg.(type) {
	case string:
		if json.Valid([]byte(m)) {
			msgJson = []byte(m)
		}
	case []byte:
		if json.Valid(m) {
			msgJson = m
		}
	default:
		var err error
		msgJson, err = json.Marshal(msg)
		if err != nil {
			log.Ctx(ctx).Err(err).Msg("unable to marshal json")
			ErrApplicationError().Send(w)
			return
		}
	}
	if msgJson == nil {
		ErrApplicationError("invalid json response").Send(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(msgJson)
}
