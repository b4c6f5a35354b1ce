package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"agenda-service/api"
	"agenda-service/pkg/response"
	"agenda-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type BlockCreator interface {
	CreateAvailabilityBlock(ctx context.Context, req *api.AvailabilityBlockRequest) (*api.AvailabilityBlockResponse, error)
}

type Request struct {
	api.AvailabilityBlockRequest
}

type Response struct {
	response.Response
	Block api.AvailabilityBlockResponse `json:"block,omitempty"`
}

func New(log *slog.Logger, creator BlockCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability_blocks.create.New"

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

		if req.Day == "" {
			log.Error("day is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "day is required"))
			return
		}

		if req.Type == "" {
			log.Error("type is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "type is required"))
			return
		}

		block, err := creator.CreateAvailabilityBlock(r.Context(), &req.AvailabilityBlockRequest)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid block payload", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid block payload"))
			return
		}

		if err != nil {
			log.Error("Failed to create availability block", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create availability block"))
			return
		}

		log.Info("Availability block created", slog.Any("block", block))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Block: *block,
		})
	}
}
