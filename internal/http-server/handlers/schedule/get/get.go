package get

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

type ScheduleGetter interface {
	GetDaySchedule(ctx context.Context, day string) (*api.DayScheduleResponse, error)
}

type Response struct {
	response.Response
	Schedule api.DayScheduleResponse `json:"schedule,omitempty"`
}

func New(log *slog.Logger, getter ScheduleGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedule.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		day := r.URL.Query().Get("day")
		if day == "" {
			log.Error("day is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "day query parameter is required"))
			return
		}

		schedule, err := getter.GetDaySchedule(r.Context(), day)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid day", slog.String("day", day))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "day must be formatted as YYYY-MM-DD"))
			return
		}

		if err != nil {
			log.Error("Failed to get day schedule", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get day schedule"))
			return
		}

		render.JSON(w, r, Response{
			Schedule: *schedule,
		})
	}
}
