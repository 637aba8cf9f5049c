package httpapi

import "net/http"

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Register")
	defer span.End()

	var req registerRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	u, err := h.userService.Register(ctx, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "register user failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, accountToDTO(u, true))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Login")
	defer span.End()

	var req loginRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	u, err := h.userService.Login(ctx, req.Token)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, accountToDTO(u, true))
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Me")
	defer span.End()

	userID, err := h.principal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	u, err := h.userService.Profile(ctx, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, accountToDTO(u, false))
}
