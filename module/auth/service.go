package auth

import (
	"context"
	"regexp"
	"strings"

	"SnapTalk/global/config"
	usermodel "SnapTalk/module/user/model"
	userservice "SnapTalk/module/user/service"
	"SnapTalk/tools/errs"
	"SnapTalk/tools/security"
)

var (
	// min 8 chars, at least one Latin letter and one digit
	passwordRegexp = regexp.MustCompile(`^[^\s]{8,}$`)
	letterRegexp   = regexp.MustCompile(`[a-zA-Z]`)
	digitRegexp    = regexp.MustCompile(`\d`)
	emailRegexp    = regexp.MustCompile(`^[a-zA-Z0-9_'+\-.]+@([a-zA-Z0-9][a-zA-Z0-9\-]*\.)+[a-zA-Z]{2,}$`)
	usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

type RegisterPayload struct {
	Email    string `json:"email" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginPayload struct {
	// username or email
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshPayload struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type LoginResult struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         *usermodel.User `json:"user"`
}

func validateRegister(p *RegisterPayload) error {
	if !emailRegexp.MatchString(p.Email) {
		return errs.ErrArgs.WrapMsg("invalid email")
	}
	if l := len(p.FullName); l < 3 || l > 50 {
		return errs.ErrArgs.WrapMsg("fullName must be 3-50 chars")
	}
	if l := len(p.Username); l < 3 || l > 30 || !usernameRegexp.MatchString(p.Username) {
		return errs.ErrArgs.WrapMsg("username must be 3-30 chars of [a-zA-Z0-9_]")
	}
	if !passwordRegexp.MatchString(p.Password) ||
		!letterRegexp.MatchString(p.Password) || !digitRegexp.MatchString(p.Password) {
		return errs.ErrArgs.WrapMsg("password must be 8+ chars with a letter and a digit")
	}
	return nil
}

// Register creates the account. The caller logs in separately.
func Register(ctx context.Context, p *RegisterPayload) (*usermodel.User, error) {
	if err := validateRegister(p); err != nil {
		return nil, err
	}
	if _, err := userservice.FindByEmail(ctx, p.Email); err == nil {
		return nil, errs.ErrDuplicate.WrapMsg("email already exist")
	} else if !errs.ErrUserNotFound.Is(err) {
		return nil, err
	}
	if _, err := userservice.FindByUsername(ctx, p.Username); err == nil {
		return nil, errs.ErrDuplicate.WrapMsg("username already exist")
	} else if !errs.ErrUserNotFound.Is(err) {
		return nil, err
	}

	hash, err := security.HashPassword(p.Password)
	if err != nil {
		return nil, errs.WrapMsg(err, "hash password")
	}
	u := &usermodel.User{
		Email:    strings.ToLower(p.Email),
		FullName: p.FullName,
		Username: p.Username,
		Password: hash,
	}
	if err := userservice.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login authenticates by username or email and issues a fresh token pair.
func Login(ctx context.Context, p *LoginPayload) (*LoginResult, error) {
	u, err := userservice.FindByUsername(ctx, p.Username)
	if errs.ErrUserNotFound.Is(err) {
		u, err = userservice.FindByEmail(ctx, strings.ToLower(p.Username))
	}
	if errs.ErrUserNotFound.Is(err) {
		return nil, errs.ErrTokenInvalid.WithDetail("user not found")
	}
	if err != nil {
		return nil, err
	}
	if !security.ComparePassword(u.Password, p.Password) {
		return nil, errs.ErrTokenInvalid.WithDetail("password invalid")
	}
	return issueTokens(ctx, u)
}

// Refresh rotates the token pair. The presented refresh token must match the
// one stored on the user document.
func Refresh(ctx context.Context, p *RefreshPayload) (*LoginResult, error) {
	claims, err := security.Verify(security.DefaultOptions(config.GetJwtSecret()), p.RefreshToken)
	if err != nil {
		return nil, errs.ErrTokenInvalid.WithDetail("invalid refresh token")
	}
	u, err := userservice.FindByID(ctx, claims.UserID)
	if errs.ErrUserNotFound.Is(err) {
		return nil, errs.ErrTokenInvalid.WithDetail("user not found")
	}
	if err != nil {
		return nil, err
	}
	if u.RefreshToken != p.RefreshToken {
		return nil, errs.ErrTokenInvalid.WithDetail("refresh token mismatch")
	}
	return issueTokens(ctx, u)
}

// Logout clears the stored token pair.
func Logout(ctx context.Context, userID string) error {
	return userservice.SaveTokens(ctx, userID, "", "")
}

func issueTokens(ctx context.Context, u *usermodel.User) (*LoginResult, error) {
	opts := security.DefaultOptions(config.GetJwtSecret())
	access, _, err := security.Generate(opts, u.ID.Hex(), u.Username, config.Global.AccessTTL)
	if err != nil {
		return nil, errs.WrapMsg(err, "sign access token")
	}
	refresh, _, err := security.Generate(opts, u.ID.Hex(), u.Username, config.Global.RefreshTTL)
	if err != nil {
		return nil, errs.WrapMsg(err, "sign refresh token")
	}
	if err := userservice.SaveTokens(ctx, u.ID.Hex(), access, refresh); err != nil {
		return nil, err
	}
	u.AccessToken = access
	u.RefreshToken = refresh
	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         u,
	}, nil
}
