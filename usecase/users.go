package usecase

import (
	"context"
	"strings"
	"time"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/services"
	"goaltracker/utils"
)

// TokenIssuer mints the access and refresh tokens handed out at login.
type TokenIssuer interface {
	GenerateToken(userID string) (string, error)
	GenerateRefreshToken(userID string) (string, error)
}

type AuthResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

type UserService struct {
	repos  Repositories
	tokens TokenIssuer
	clock  Clock
}

func NewUserService(repos Repositories, tokens TokenIssuer, clock Clock) *UserService {
	return &UserService{repos: repos, tokens: tokens, clock: clock}
}

// Register creates an account with an argon2 password hash.
func (svc *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, errs.BadRequest("username is required")
	}
	if !utils.ValidatePassword(req.Password) {
		return nil, errs.BadRequest("password must be at least 6 characters with a number and a special character")
	}
	if req.TimeZone != "" {
		if _, err := time.LoadLocation(req.TimeZone); err != nil {
			return nil, errs.BadRequest("unknown time zone %q", req.TimeZone)
		}
	}

	existing, err := svc.repos.Users.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.Duplicate("username %q is taken", username)
	}

	hash, err := services.HashPassword(req.Password)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "failed to hash password")
	}

	user := &model.User{
		UserID:    utils.NewID(),
		Username:  username,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  hash,
		TimeZone:  req.TimeZone,
		CreatedAt: svc.clock.now(),
	}
	if err := svc.repos.Users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	utils.Log.WithField("user_id", user.UserID).Info("user registered")
	return user, nil
}

// Login checks credentials and issues tokens. Unknown users and wrong
// passwords produce the same error.
func (svc *UserService) Login(ctx context.Context, req model.LoginRequest) (*AuthResult, error) {
	user, err := svc.repos.Users.FindUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		utils.TrackAuthAttempt("failure", "password")
		return nil, errs.Unauthorized("invalid username or password")
	}
	if ok, err := services.VerifyPassword(user.Password, req.Password); err != nil || !ok {
		utils.TrackAuthAttempt("failure", "password")
		return nil, errs.Unauthorized("invalid username or password")
	}

	access, err := svc.tokens.GenerateToken(user.UserID)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "failed to generate token")
	}
	refresh, err := svc.tokens.GenerateRefreshToken(user.UserID)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "failed to generate refresh token")
	}

	utils.TrackAuthAttempt("success", "password")
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func (svc *UserService) Profile(ctx context.Context, id model.Identity) (*model.User, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return svc.repos.Users.GetUser(ctx, id.UserID)
}
