package service

import (
	"context"
	"strings"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/config"
	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/model"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/tenant"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Token kinds carried in the token_type claim.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

const bcryptCost = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CreateUser(ctx context.Context, actor tenant.Actor, req dto.CreateUserRequest) (*model.User, error)
}

type authService struct {
	users     repository.UserRepository
	companies repository.CompanyRepository
	cfg       *config.Config
}

func NewAuthService(users repository.UserRepository, companies repository.CompanyRepository, cfg *config.Config) AuthService {
	return &authService{users: users, companies: companies, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, apierror.Unauthorizedf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.Unauthorizedf("invalid credentials")
	}
	return s.issue(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apierror.Unauthorizedf("refresh token is invalid or expired")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["token_type"] != TokenRefresh {
		return nil, apierror.Unauthorizedf("not a refresh token")
	}
	userIDStr, _ := claims["user_id"].(string)
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, apierror.Unauthorizedf("malformed token")
	}

	user, err := s.users.FindByID(ctx, uid)
	if err != nil || !user.Active {
		return nil, apierror.Unauthorizedf("user not found or inactive")
	}
	return s.issue(user)
}

// CreateUser adds a staff account. Only a SUPERADMIN may create another
// SUPERADMIN or a user outside its own company.
func (s *authService) CreateUser(ctx context.Context, actor tenant.Actor, req dto.CreateUserRequest) (*model.User, error) {
	if !tenant.ValidRole(req.Role) {
		return nil, apierror.Validationf("unknown role %q", req.Role)
	}
	if !actor.AtLeast(req.Role) {
		return nil, apierror.Forbiddenf("cannot create a %s user", req.Role)
	}
	reqCompany, err := parseOptionalUUID(req.CompanyID, "companyId")
	if err != nil {
		return nil, err
	}
	companyID, err := actor.ScopeCompany(reqCompany)
	if err != nil {
		return nil, err
	}
	if _, err := s.companies.FindByID(ctx, companyID); err != nil {
		return nil, notFound(err, "company")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		CompanyID:    companyID,
		Username:     strings.TrimSpace(req.Username),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, apierror.Conflictf("username %q is taken", user.Username)
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) issue(user *model.User) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, TokenAccess, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, TokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         dto.NewUserInfo(user),
	}, nil
}

func (s *authService) generateToken(user *model.User, kind string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    user.ID.String(),
		"username":   user.Username,
		"role":       user.Role,
		"company_id": user.CompanyID.String(),
		"token_type": kind,
		"exp":        time.Now().Add(duration).Unix(),
		"iat":        time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
