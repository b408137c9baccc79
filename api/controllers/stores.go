package controllers

import (
	"net/http"

	"github.com/tablenow/tablenow-backend/api/middleware"
	"github.com/tablenow/tablenow-backend/api/responses"
	"github.com/tablenow/tablenow-backend/api/validators"
	"github.com/tablenow/tablenow-backend/internal/stores"
	"github.com/tablenow/tablenow-backend/pkg/enums"
	pkgerrors "github.com/tablenow/tablenow-backend/pkg/errors"
	"github.com/tablenow/tablenow-backend/pkg/logger"
	"github.com/tablenow/tablenow-backend/pkg/types"
)

const maxKeywordLen = 100

// StoreList serves the public listing: ?keyword=&sort=&lat=&lng=.
func StoreList(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("store"))
			return
		}

		query, err := parseStoreListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func parseStoreListQuery(r *http.Request) (stores.ListQuery, error) {
	q := r.URL.Query()
	query := stores.ListQuery{
		Keyword: validators.SanitizeString(q.Get("keyword"), maxKeywordLen),
	}

	if raw := q.Get("sort"); raw != "" {
		sort, err := enums.ParseStoreSort(raw)
		if err != nil {
			return query, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort").
				WithDetails(map[string]any{"field": "sort"})
		}
		query.Sort = sort
	}

	lat, err := validators.ParseQueryFloat(r, "lat")
	if err != nil {
		return query, err
	}
	lng, err := validators.ParseQueryFloat(r, "lng")
	if err != nil {
		return query, err
	}
	switch {
	case lat != nil && lng != nil:
		origin := types.GeoPoint{Lat: *lat, Lng: *lng}
		if err := origin.Validate(); err != nil {
			return query, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coordinates")
		}
		query.Origin = &origin
	case lat != nil || lng != nil:
		return query, pkgerrors.New(pkgerrors.CodeValidation, "lat and lng must be provided together")
	}
	return query, nil
}

func StoreDetail(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("store"))
			return
		}
		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.GetByID(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

// StoreRegister lets a manager open a new store they own.
func StoreRegister(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("store"))
			return
		}
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body stores.RegisterStoreInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.Register(r.Context(), userID, middleware.RoleFromContext(r.Context()), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, store)
	}
}

func StoreUpdate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("store"))
			return
		}
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body stores.UpdateStoreInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.Update(r.Context(), userID, storeID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

func StoreDelete(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("store"))
			return
		}
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, storeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
