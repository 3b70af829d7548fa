package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/dmaidana/burger_kiosk/internal/hash"
	"github.com/dmaidana/burger_kiosk/internal/models"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
}

func CreateCookie(name string, value string, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Login authenticates a staff member and issues a short-lived access
// token, both in the response body and as an httpOnly cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo de la solicitud inválido", err)
	}
	if req.Username == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "usuario y contraseña son obligatorios", nil)
	}

	var user models.StaffUser
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusUnauthorized, "credenciales inválidas", nil)
		}
		return fail(c, http.StatusInternalServerError, "Error al iniciar sesión", err)
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "credenciales inválidas", nil)
	}

	accessExp := time.Now().Add(15 * time.Minute)
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  accessExp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString(h.JWTSecret)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error al iniciar sesión", err)
	}

	c.SetCookie(CreateCookie("accessToken", accessToken, "/", accessExp))

	return ok(c, http.StatusOK, map[string]any{
		"access_token": accessToken,
		"role":         user.Role,
		"expires_at":   accessExp.Unix(),
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(CreateCookie("accessToken", "", "/", expired))
	return okMsg(c, http.StatusOK, "Sesión cerrada", nil)
}
