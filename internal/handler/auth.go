package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/padelhq/club-reservation/internal/config"
	"github.com/padelhq/club-reservation/internal/model"
	"github.com/padelhq/club-reservation/internal/repository"
	"github.com/padelhq/club-reservation/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Members *repository.MemberRepo
	Tokens  *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, m *repository.MemberRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Members: m, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	MemberNumber string `json:"member_number"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Gender       string `json:"gender"` // M | F
	Level        int    `json:"level"`
	Team         string `json:"team"`
	Role         string `json:"role"` // MEMBER | STAFF
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type memberPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
type authResp struct {
	Member  memberPart `json:"member"`
	Access  tokenPart  `json:"access"`
	Refresh tokenPart  `json:"refresh"`
}

// Register: create member account and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	req.Gender = strings.ToUpper(strings.TrimSpace(req.Gender))
	if req.Gender != model.GenderMale && req.Gender != model.GenderFemale {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "gender must be M or F"})
	}
	if req.Level < 0 || req.Level > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "level must be 0-100"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != model.RoleStaff && role != model.RoleMember {
		role = model.RoleMember
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	mid, err := h.Members.Create(ctx, repository.NewMember{
		Email:        req.Email,
		Password:     req.Password,
		MemberNumber: strings.TrimSpace(req.MemberNumber),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Gender:       req.Gender,
		Level:        req.Level,
		Team:         strings.TrimSpace(req.Team),
		Role:         role,
	}, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create member failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, mid, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, mid, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	name := (&model.Member{FirstName: req.FirstName, LastName: req.LastName, Email: req.Email}).DisplayName()
	return c.JSON(http.StatusCreated, authResp{
		Member:  memberPart{ID: mid, Email: req.Email, Name: name, Role: role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Login: verify credentials and return a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Members.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !m.IsActive || !utils.VerifyPassword(m.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, m.ID, m.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, m.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		Member:  memberPart{ID: m.ID, Email: m.Email, Name: m.DisplayName(), Role: m.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Refresh: validate by hash, revoke old, issue a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	memberID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	m, err := h.Members.GetByID(ctx, memberID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load member failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, memberID, m.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	newRef, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, memberID, utils.HashRefreshRaw(newRef.Raw), newRef.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		Member:  memberPart{ID: m.ID, Email: m.Email, Name: m.DisplayName(), Role: m.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: newRef.Raw, Expires: newRef.Exp},
	})
}

// Logout revokes a specific refresh token when one is supplied, or every
// session of the bearer when only an access token is present.
func (h *AuthHandler) Logout(c echo.Context) error {
	var uid uint64
	hasBearer := false
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		rawToken := strings.TrimPrefix(authHeader, "Bearer ")
		tok, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, echo.ErrUnauthorized
			}
			return []byte(h.Cfg.JWTSecret), nil
		})
		if err == nil && tok.Valid {
			if claims, ok := tok.Claims.(jwt.MapClaims); ok {
				switch subVal := claims["sub"].(type) {
				case float64:
					uid = uint64(subVal)
					hasBearer = true
				case string:
					if parsed, err := strconv.ParseUint(subVal, 10, 64); err == nil {
						uid = parsed
						hasBearer = true
					}
				}
			}
		}
	}

	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if hasBearer && refreshToken == "" {
		if uid == 0 {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		if err := h.Tokens.RevokeAllForMember(ctx, uid); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}
	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}

type profileReq struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Gender    string  `json:"gender"`
	Level     *int    `json:"level"`
	Team      *string `json:"team"`
}

// UpdateMe edits the authenticated member's profile fields.  Level
// changes affect future roster ordering only.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	mid, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	m, err := h.Members.GetByID(ctx, mid)
	if err != nil {
		return writeDomainErr(c, err)
	}
	if req.FirstName != "" {
		m.FirstName = strings.TrimSpace(req.FirstName)
	}
	if req.LastName != "" {
		m.LastName = strings.TrimSpace(req.LastName)
	}
	if req.Gender != "" {
		g := strings.ToUpper(strings.TrimSpace(req.Gender))
		if g != model.GenderMale && g != model.GenderFemale {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "gender must be M or F"})
		}
		m.Gender = g
	}
	if req.Level != nil {
		if *req.Level < 0 || *req.Level > 100 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "level must be 0-100"})
		}
		m.Level = *req.Level
	}
	if req.Team != nil {
		m.Team = strings.TrimSpace(*req.Team)
	}
	if err := h.Members.UpdateProfile(ctx, m); err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":     m.ID,
		"name":   m.DisplayName(),
		"gender": m.Gender,
		"level":  m.Level,
		"team":   m.Team,
	})
}

// Me returns the authenticated member's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	mid, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	m, err := h.Members.GetByID(ctx, mid)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":            m.ID,
		"email":         m.Email,
		"member_number": m.MemberNumber,
		"name":          m.DisplayName(),
		"gender":        m.Gender,
		"level":         m.Level,
		"team":          m.Team,
		"role":          m.Role,
	})
}
