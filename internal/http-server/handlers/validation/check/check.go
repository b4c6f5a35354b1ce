package check

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"agenda-service/api"
	"agenda-service/internal/validate"
	"agenda-service/pkg/response"
	"agenda-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type DropChecker interface {
	DropCheck(ctx context.Context, req *api.DropCheckRequest) (*validate.Result, error)
}

type Request struct {
	api.DropCheckRequest
}

type Response struct {
	response.Response
	Result validate.Result `json:"result"`
}

func New(log *slog.Logger, checker DropChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.validation.check.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		if req.ServiceID == "" {
			log.Error("service_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "service_id is required"))
			return
		}

		if req.Day == "" {
			log.Error("day is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "day is required"))
			return
		}

		result, err := checker.DropCheck(r.Context(), &req.DropCheckRequest)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("service not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "service not found"))
			return
		}

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid check payload", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid check payload"))
			return
		}

		if err != nil {
			log.Error("Failed to run drop check", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to run drop check"))
			return
		}

		render.JSON(w, r, Response{
			Result: *result,
		})
	}
}
