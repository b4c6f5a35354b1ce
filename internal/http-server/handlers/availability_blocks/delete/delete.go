package delete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"agenda-service/pkg/response"
	"agenda-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type BlockDeleter interface {
	DeleteAvailabilityBlock(ctx context.Context, id string) error
}

func New(log *slog.Logger, deleter BlockDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability_blocks.delete.New"

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

		err := deleter.DeleteAvailabilityBlock(r.Context(), id)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("availability block not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "availability block not found"))
			return
		}

		if err != nil {
			log.Error("Failed to delete availability block", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to delete availability block"))
			return
		}

		log.Info("Availability block deleted", slog.String("id", id))

		w.WriteHeader(http.StatusNoContent)
	}
}
