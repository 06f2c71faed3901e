package handlers

import (
	"freight-order-service/internal/api/dto"
	"freight-order-service/internal/auth"
	"freight-order-service/internal/services"
	"net/http"
)

// AccountHandler serves registration, sessions, the profile and the inbox.
type AccountHandler struct {
	Accounts *services.AccountService
	Sessions *auth.Sessions
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.Accounts.Register(r.Context(), services.Registration{
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.Sessions.SetCookie(w, u.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "Регистрация успешна", payload{"user": dto.NewUserResponse(*u)})
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.Accounts.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.Sessions.SetCookie(w, u.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "Вход выполнен успешно", payload{"user": dto.NewUserResponse(*u)})
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearCookie(w)
	writeOK(w, r, "Выход выполнен успешно", nil)
}

// CurrentUser never fails: anonymous callers get success=false and a null user.
func (h *AccountHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if p == nil {
		writeJSON(w, r, http.StatusOK, payload{"success": false, "user": nil})
		return
	}

	u, err := h.Accounts.Profile(r.Context(), p)
	if err != nil {
		h.Sessions.ClearCookie(w)
		writeJSON(w, r, http.StatusOK, payload{"success": false, "user": nil})
		return
	}
	writeOK(w, r, "", payload{"user": dto.NewUserResponse(*u)})
}

func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.Accounts.Profile(r.Context(), principal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "", payload{"user": dto.NewUserResponse(*u)})
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.ProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.Accounts.UpdateProfile(r.Context(), principal(r), services.ProfileUpdate{
		Email:     req.Email,
		Phone:     req.Phone,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "Профиль обновлен", payload{"user": dto.NewUserResponse(*u)})
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Accounts.ChangePassword(r.Context(), principal(r), req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "Пароль успешно изменен", nil)
}

func (h *AccountHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Accounts.Stats(r.Context(), principal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "", payload{"stats": dto.StatsResponse{
		Total:      st.Total,
		Processing: st.Processing,
		InTransit:  st.InTransit,
		Delivered:  st.Delivered,
	}})
}

func (h *AccountHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	ns, err := h.Accounts.Notifications(r.Context(), principal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]dto.NotificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, dto.NewNotificationResponse(n))
	}
	writeOK(w, r, "", payload{"notifications": out})
}

func (h *AccountHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Accounts.MarkNotificationRead(r.Context(), principal(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, r, "", nil)
}
