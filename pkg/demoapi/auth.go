package demoapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/buildtrack/buildtrack-terminal/pkg/models"
)

// Claims mirror the access and refresh tokens of the real backend
type Claims struct {
	UserID    int    `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type contextKey string

const userContextKey contextKey = "user"

func (s *Server) issue(userID int, kind string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    userID,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) verify(tokenStr, kind string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.TokenType != kind {
		return nil, errors.New("wrong token type")
	}
	return claims, nil
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeDetail(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		claims, err := s.verify(strings.TrimPrefix(header, "Bearer "), "access")
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}
		s.mu.RLock()
		acct := s.users[claims.UserID]
		s.mu.RUnlock()
		if acct == nil {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, acct)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(ctx context.Context) *account {
	acct, _ := ctx.Value(userContextKey).(*account)
	return acct
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, msgBadJSON)
		return
	}
	errs := fieldErrors{}
	if req.Username == "" {
		errs.add("username", msgRequired)
	}
	if req.Password == "" {
		errs.add("password", msgRequired)
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	s.mu.RLock()
	acct := s.findUser(func(a *account) bool { return a.Username == req.Username })
	s.mu.RUnlock()
	if acct == nil || bcrypt.CompareHashAndPassword(acct.hash, []byte(req.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	access, err := s.issue(acct.ID, "access", s.accessTTL)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	refresh, err := s.issue(acct.ID, "refresh", s.refreshTTL)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.TokenPair{Access: access, Refresh: refresh})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := readJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, msgBadJSON)
		return
	}
	if req.Refresh == "" {
		writeFieldErrors(w, fieldErrors{"refresh": {msgRequired}})
		return
	}
	claims, err := s.verify(req.Refresh, "refresh")
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	access, err := s.issue(claims.UserID, "access", s.accessTTL)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.TokenPair{Access: access})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Password2 string `json:"password2"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Role      string `json:"role"`
	}
	if err := readJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, msgBadJSON)
		return
	}

	errs := fieldErrors{}
	if req.Username == "" {
		errs.add("username", msgRequired)
	}
	if req.Email == "" {
		errs.add("email", msgRequired)
	} else if !strings.Contains(req.Email, "@") {
		errs.add("email", "Enter a valid email address.")
	}
	if req.Password == "" {
		errs.add("password", msgRequired)
	} else if len(req.Password) < 8 {
		errs.add("password", "This password is too short. It must contain at least 8 characters.")
	}
	if req.Password != req.Password2 {
		errs.add("password", "Password fields didn't match.")
	}
	switch req.Role {
	case "":
		req.Role = models.RoleWorker
	case models.RoleWorker, models.RoleSupervisor:
	default:
		errs.add("role", `"`+req.Role+`" is not a valid choice.`)
	}

	s.mu.RLock()
	taken := s.findUser(func(a *account) bool { return a.Username == req.Username }) != nil
	s.mu.RUnlock()
	if taken {
		errs.add("username", "A user with that username already exists.")
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	acct, err := s.addUser(models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	}, req.Password)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, publicUser(acct))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, publicUser(currentUser(r.Context())))
}
