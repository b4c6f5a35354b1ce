package resize

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"agenda-service/api"
	"agenda-service/pkg/response"
	"agenda-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type BlockResizer interface {
	ResizeAvailabilityBlock(ctx context.Context, id string, req *api.AvailabilityResizeRequest) (*api.AvailabilityBlockResponse, error)
}

type Request struct {
	api.AvailabilityResizeRequest
}

type Response struct {
	response.Response
	Block api.AvailabilityBlockResponse `json:"block,omitempty"`
}

func New(log *slog.Logger, resizer BlockResizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability_blocks.resize.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if id == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		if req.Edge != "top" && req.Edge != "bottom" {
			log.Error("invalid edge", slog.String("edge", req.Edge))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "edge must be top or bottom"))
			return
		}

		block, err := resizer.ResizeAvailabilityBlock(r.Context(), id, &req.AvailabilityResizeRequest)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("availability block not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "availability block not found"))
			return
		}

		if errors.Is(err, response.ErrLocked) {
			log.Error("day is locked")
			w.WriteHeader(http.StatusLocked)
			render.JSON(w, r, response.Error(string(response.LOCKED), "day is locked by another operation"))
			return
		}

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid resize payload", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid resize payload"))
			return
		}

		if err != nil {
			log.Error("Failed to resize availability block", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to resize availability block"))
			return
		}

		log.Info("Availability block resized", slog.Any("block", block))

		render.JSON(w, r, Response{
			Block: *block,
		})
	}
}
