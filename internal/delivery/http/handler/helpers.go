package handler

import (
	"net/http"
	"strconv"

	"medibook/internal/delivery/http/middleware"
	"medibook/internal/domain/entity"
	"medibook/pkg/apperror"
	"medibook/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// writeError maps taxonomy errors to their status; anything else is a 500 with fallback.
func writeError(w http.ResponseWriter, err error, fallback string) {
	if _, ok := apperror.As(err); ok {
		response.FromError(w, err)
		return
	}
	response.InternalServerError(w, fallback)
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+label+" ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func actorFrom(w http.ResponseWriter, r *http.Request) (entity.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
	}
	return actor, ok
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}
