package services

import (
	"SalvadoDental/models"
	"SalvadoDental/repositories"
	"SalvadoDental/utils"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

const registrationLockTTL = 10 * time.Second

// Locker serialises work on a key across instances.
type Locker interface {
	Acquire(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, value string) error
}

// CodeStore keeps pending email confirmation codes.
type CodeStore interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

type RegisterInput struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	DateOfBirth     string `json:"dob"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// DoctorAccount describes the single doctor profile created at startup.
type DoctorAccount struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	DateOfBirth string
}

// Session is the identity attached to a valid access token.
type Session struct {
	Profile *models.Profile
	Role    string
}

type AuthService struct {
	profiles repositories.ProfileRepository
	codes    CodeStore
	locker   Locker
	mailer   utils.Mailer
	tokens   *utils.TokenMaker
	now      func() time.Time
	newCode  func() string
}

func NewAuthService(profiles repositories.ProfileRepository, codes CodeStore, locker Locker, mailer utils.Mailer, tokens *utils.TokenMaker) *AuthService {
	return &AuthService{
		profiles: profiles,
		codes:    codes,
		locker:   locker,
		mailer:   mailer,
		tokens:   tokens,
		now:      time.Now,
		newCode:  utils.GenerateConfirmationCode,
	}
}

// Register creates an unconfirmed patient profile and mails a confirmation code.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.Profile, error) {
	profile := models.Profile{
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:       strings.TrimSpace(input.Phone),
		DateOfBirth: strings.TrimSpace(input.DateOfBirth),
	}
	if err := utils.ValidateProfileData(profile, input.Password); err != nil {
		return nil, newValidationError(err)
	}
	if input.Password != input.ConfirmPassword {
		return nil, &ValidationError{Field: "confirm_password", Message: "confirm_password: passwords do not match."}
	}

	dob, _ := time.Parse(models.DateOfBirthLayout, profile.DateOfBirth)
	if ComputeAge(dob, s.now()) < MinimumRegistrationAge {
		return nil, &ValidationError{Field: "dob", Message: fmt.Sprintf("dob: patients must be at least %d years old.", MinimumRegistrationAge)}
	}

	lockKey := "profile_lock:" + profile.Email
	lockValue := uuid.NewString()
	if s.locker != nil {
		acquired, err := s.locker.Acquire(ctx, lockKey, lockValue, registrationLockTTL)
		if err != nil {
			return nil, &PersistenceError{Op: "acquire registration lock", Err: err}
		}
		if !acquired {
			return nil, &ValidationError{Field: "email", Message: "email: a registration for this address is already in progress."}
		}
		defer func() {
			if err := s.locker.Release(ctx, lockKey, lockValue); err != nil {
				log.Printf("Failed to release lock %s: %v", lockKey, err)
			}
		}()
	}

	exists, err := s.profiles.EmailExists(ctx, profile.Email)
	if err != nil {
		return nil, &PersistenceError{Op: "check email", Err: err}
	}
	if exists {
		return nil, &ValidationError{Field: "email", Message: "email: already registered."}
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	profile.ID = uuid.NewString()
	profile.Role = models.RolePatient
	profile.PasswordHash = hash
	profile.CreatedAt = s.now().UTC()

	if err := s.profiles.Create(ctx, &profile); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, &ValidationError{Field: "email", Message: "email: already registered."}
		}
		return nil, &PersistenceError{Op: "create profile", Err: err}
	}

	if err := s.sendConfirmation(ctx, &profile); err != nil {
		// The profile exists; the code can be requested again.
		log.Printf("Failed to send confirmation to %s: %v", profile.Email, err)
	}
	return &profile, nil
}

// ConfirmEmail marks the profile's email confirmed when code matches the stored one.
func (s *AuthService) ConfirmEmail(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return &ValidationError{Field: "code", Message: "email and code are required."}
	}

	stored, err := s.codes.Get(ctx, email)
	if err != nil {
		return &PersistenceError{Op: "get confirmation code", Err: err}
	}
	if stored == "" || stored != code {
		return &AuthError{Message: "invalid or expired confirmation code"}
	}

	profile, err := s.profiles.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return &NotFoundError{Resource: "profile", ID: email}
	}
	if err != nil {
		return &PersistenceError{Op: "get profile", Err: err}
	}
	if err := s.profiles.MarkEmailConfirmed(ctx, profile.ID); err != nil {
		return &PersistenceError{Op: "confirm email", Err: err}
	}
	if err := s.codes.Delete(ctx, email); err != nil {
		log.Printf("Failed to delete confirmation code for %s: %v", email, err)
	}
	return nil
}

// ResendConfirmation issues a fresh code for an unconfirmed profile.
func (s *AuthService) ResendConfirmation(ctx context.Context, email string) error {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return &NotFoundError{Resource: "profile", ID: email}
	}
	if err != nil {
		return &PersistenceError{Op: "get profile", Err: err}
	}
	if profile.EmailConfirmed {
		return &ValidationError{Field: "email", Message: "email: already confirmed."}
	}
	return s.sendConfirmation(ctx, profile)
}

// Login checks credentials and returns a fresh access and refresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Profile, string, string, error) {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, "", "", &AuthError{Message: "invalid email or password"}
	}
	if err != nil {
		return nil, "", "", &PersistenceError{Op: "get profile", Err: err}
	}
	if !utils.CheckPassword(profile.PasswordHash, password) {
		return nil, "", "", &AuthError{Message: "invalid email or password"}
	}
	if !profile.EmailConfirmed {
		return nil, "", "", &AuthError{Message: "email not confirmed"}
	}

	accessToken, refreshToken, err := s.tokens.GenerateTokens(profile.ID, profile.Role)
	if err != nil {
		return nil, "", "", err
	}
	return profile, accessToken, refreshToken, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ValidateToken(refreshToken, utils.RefreshTokenType)
	if err != nil {
		return "", &AuthError{Message: "invalid or expired refresh token"}
	}
	if _, err := s.profiles.GetByID(ctx, claims.UserID); err != nil {
		return "", &AuthError{Message: "invalid or expired refresh token"}
	}
	return s.tokens.GenerateAccessToken(claims.UserID, claims.Role)
}

// Session resolves the profile behind a token.
func (s *AuthService) Session(ctx context.Context, token string) (*Session, error) {
	claims, err := s.tokens.ValidateToken(token, utils.AccessTokenType)
	if err != nil {
		return nil, &AuthError{Message: "invalid or expired session"}
	}
	profile, err := s.profiles.GetByID(ctx, claims.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, &AuthError{Message: "invalid or expired session"}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get profile", Err: err}
	}
	return &Session{Profile: profile, Role: profile.Role}, nil
}

// EnsureDoctor creates the doctor profile when no profile uses its email yet.
func (s *AuthService) EnsureDoctor(ctx context.Context, account DoctorAccount) error {
	if account.Email == "" || account.Password == "" {
		log.Printf("Doctor account not configured, skipping")
		return nil
	}
	exists, err := s.profiles.EmailExists(ctx, account.Email)
	if err != nil {
		return &PersistenceError{Op: "check email", Err: err}
	}
	if exists {
		return nil
	}

	hash, err := utils.HashPassword(account.Password)
	if err != nil {
		return err
	}
	profile := models.Profile{
		ID:             uuid.NewString(),
		FirstName:      account.FirstName,
		LastName:       account.LastName,
		Email:          strings.ToLower(strings.TrimSpace(account.Email)),
		DateOfBirth:    account.DateOfBirth,
		Role:           models.RoleDoctor,
		PasswordHash:   hash,
		EmailConfirmed: true,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.profiles.Create(ctx, &profile); err != nil && !errors.Is(err, repositories.ErrDuplicate) {
		return &PersistenceError{Op: "create doctor profile", Err: err}
	}
	log.Printf("Doctor profile ready for %s", profile.Email)
	return nil
}

func (s *AuthService) sendConfirmation(ctx context.Context, profile *models.Profile) error {
	code := s.newCode()
	if err := s.codes.Save(ctx, profile.Email, code, utils.ConfirmationCodeExpiry); err != nil {
		return &PersistenceError{Op: "save confirmation code", Err: err}
	}
	if s.mailer == nil {
		return nil
	}
	return utils.SendConfirmationEmail(s.mailer, profile.Email, profile.FullName(), code)
}
