package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
	"github.com/oksasatya/go-places-api/pkg/helpers"
	"github.com/oksasatya/go-places-api/pkg/mailer"
)

const userImageFolder = "users"

type UserService struct {
	Store  repository.Store
	JWT    *helpers.JWTManager
	Hasher *helpers.PasswordHasher
	Images ImageStore
	Jobs   JobPublisher // optional; welcome emails are skipped without it
	Logger *logrus.Logger
	AppURL string
}

func NewUserService(store repository.Store, jwt *helpers.JWTManager, hasher *helpers.PasswordHasher, images ImageStore, jobs JobPublisher, logger *logrus.Logger, appURL string) *UserService {
	return &UserService{
		Store:  store,
		JWT:    jwt,
		Hasher: hasher,
		Images: images,
		Jobs:   jobs,
		Logger: logger,
		AppURL: appURL,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Image    *Upload
}

// AuthResult is returned by sign-up and login.
type AuthResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account with an empty place list and issues a token.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.Store.Users().GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, persistence("lookup email", err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, helpers.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, helpers.MaxPasswordBytes)
		}
		return nil, err
	}

	imageURL := ""
	if in.Image != nil {
		if imageURL, err = s.Images.Save(ctx, userImageFolder, *in.Image); err != nil {
			return nil, err
		}
	}

	u := &entity.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hash,
		ImageURL: imageURL,
		Places:   []string{},
	}
	if err := s.Store.Users().Create(ctx, u); err != nil {
		s.dropImage(imageURL)
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, persistence("insert user", err)
	}

	token, exp, err := s.JWT.Issue(helpers.Identity{UserID: u.ID, Email: u.Email, Name: u.Name}, 0)
	if err != nil {
		return nil, err
	}

	s.enqueueWelcome(ctx, u)
	s.logger().WithField("user_id", u.ID).Info("user registered")
	return &AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// Login checks credentials. Unknown emails give ErrUserNotFound and wrong
// passwords ErrInvalidCredentials; both paths run one bcrypt comparison.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.Store.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.Hasher.CompareDummy(password)
			return nil, ErrUserNotFound
		}
		return nil, persistence("lookup email", err)
	}
	if !s.Hasher.Compare(u.Password, password) {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.JWT.Issue(helpers.Identity{UserID: u.ID, Email: u.Email}, 0)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// List returns every user in registration order.
func (s *UserService) List(ctx context.Context) ([]*entity.User, error) {
	users, err := s.Store.Users().List(ctx)
	if err != nil {
		return nil, persistence("list users", err)
	}
	return users, nil
}

func (s *UserService) enqueueWelcome(ctx context.Context, u *entity.User) {
	if s.Jobs == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateWelcome,
		Data: map[string]any{
			"Name":   u.Name,
			"AppURL": s.AppURL,
		},
	}
	if err := s.Jobs.PublishJSON(ctx, job); err != nil {
		s.logger().WithError(err).WithField("user_id", u.ID).Warn("failed to enqueue welcome email")
	}
}

func (s *UserService) dropImage(ref string) {
	if ref == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	if err := s.Images.Delete(ctx, ref); err != nil {
		s.logger().WithError(err).WithField("image", ref).Warn("image cleanup failed")
	}
}

func (s *UserService) logger() *logrus.Logger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}
