package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/assignsphere/backend/internal/models"
)

var (
	// ErrDuplicateEmail is returned when registering with an email that
	// already has an account of the same kind.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotFound is returned when no account exists for the given email or id.
	ErrNotFound = errors.New("account not found")
	// ErrInvalidCredentials covers every password mismatch. The message never
	// reveals whether the email exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWriterNotApproved blocks writer logins until an admin approves the
	// application.
	ErrWriterNotApproved = errors.New("writer application not approved")
)

// WriterApplication carries a writer registration. Attachments are object
// store references, already uploaded by the handler.
type WriterApplication struct {
	FullName       string
	Email          string
	Phone          string
	CountryCode    string
	Password       string
	Expertise      string
	Qualifications string
	Experience     string
	Attachments    []string
}

// Session is a successful authentication. Token is set for writers only.
type Session struct {
	Token   string          `json:"token,omitempty"`
	Account *models.Account `json:"account,omitempty"`
	Writer  *models.Writer  `json:"writer,omitempty"`
}

// Store is the persistence surface the service needs.
type Store interface {
	CreateStudent(ctx context.Context, a *models.Account) error
	GetStudentByEmail(ctx context.Context, email string) (*models.Account, error)
	StudentCodeExists(ctx context.Context, code string) (bool, error)
	CreateWriter(ctx context.Context, w *models.Writer) error
	GetWriterByEmail(ctx context.Context, email string) (*models.Writer, error)
	GetWriterByID(ctx context.Context, id uuid.UUID) (*models.Writer, error)
	ListWriters(ctx context.Context, approved bool) ([]*models.Writer, error)
	ApproveWriter(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteWriter(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	store  Store
	secret []byte
	ttl    time.Duration
}

func NewService(store Store, secret []byte, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{store: store, secret: secret, ttl: ttl}
}

type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RegisterStudent creates a student account with a fresh unique student code.
func (s *Service) RegisterStudent(ctx context.Context, fullName, email, password string) (*models.Account, error) {
	var missing []string
	if fullName == "" {
		missing = append(missing, "full_name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, models.Validationf(missing...)
	}

	existing, err := s.store.GetStudentByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// Insert with a fresh candidate code, retrying on a code collision. The
	// unique index is the arbiter, so two registrations racing on the same
	// candidate cannot both win.
	for {
		code, err := s.GenerateStudentCode(ctx)
		if err != nil {
			return nil, err
		}
		a := &models.Account{
			ID:           uuid.New(),
			FullName:     fullName,
			Email:        email,
			StudentCode:  code,
			PasswordHash: string(hash),
		}
		err = s.store.CreateStudent(ctx, a)
		if err == nil {
			return a, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case studentCodeConstraint:
				continue
			case studentEmailConstraint:
				return nil, ErrDuplicateEmail
			}
		}
		return nil, err
	}
}

// GenerateStudentCode produces a candidate code, re-checking the store until
// an unused one turns up. With a million possible codes the loop terminates
// in practice long before the space fills.
func (s *Service) GenerateStudentCode(ctx context.Context) (string, error) {
	for {
		n, err := rand.Int(rand.Reader, big.NewInt(900000))
		if err != nil {
			return "", err
		}
		code := fmt.Sprintf("%s%d", models.StudentCodePrefix, 100000+n.Int64())
		exists, err := s.store.StudentCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}

// RegisterWriter files a writer application. The account starts unapproved.
func (s *Service) RegisterWriter(ctx context.Context, app WriterApplication) (*models.Writer, error) {
	var missing []string
	if app.FullName == "" {
		missing = append(missing, "full_name")
	}
	if app.Email == "" {
		missing = append(missing, "email")
	}
	if app.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, models.Validationf(missing...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(app.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	w := &models.Writer{
		ID:             uuid.New(),
		FullName:       app.FullName,
		Email:          app.Email,
		Phone:          app.Phone,
		CountryCode:    app.CountryCode,
		PasswordHash:   string(hash),
		Expertise:      app.Expertise,
		Qualifications: app.Qualifications,
		Experience:     app.Experience,
		Attachments:    app.Attachments,
		OnTimeDelivery: 100,
	}
	if w.Attachments == nil {
		w.Attachments = []string{}
	}

	if err := s.store.CreateWriter(ctx, w); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return w, nil
}

// LoginStudent verifies a student's credentials.
func (s *Service) LoginStudent(ctx context.Context, email, password string) (*Session, error) {
	a, err := s.store.GetStudentByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &Session{Account: a}, nil
}

// LoginWriter verifies credentials and the approval gate, then issues a
// time-boxed token carrying the writer's id, email, and role.
func (s *Service) LoginWriter(ctx context.Context, email, password string) (*Session, error) {
	w, err := s.store.GetWriterByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrNotFound
	}
	if !w.IsApproved {
		return nil, ErrWriterNotApproved
	}
	if err := bcrypt.CompareHashAndPassword([]byte(w.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(w.ID, w.Email, models.RoleWriter)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Writer: w}, nil
}

func (s *Service) issueToken(id uuid.UUID, email, role string) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: email,
		Role:  role,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}

// ValidateToken parses a writer token and returns the embedded identity.
func (s *Service) ValidateToken(token string) (uuid.UUID, string, error) {
	tok, err := jwt.ParseWithClaims(token, &claims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, "", err
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return uuid.Nil, "", errors.New("invalid token")
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, "", err
	}
	return id, c.Role, nil
}

// ApproveWriter flips the approval flag (admin only).
func (s *Service) ApproveWriter(ctx context.Context, id uuid.UUID) error {
	ok, err := s.store.ApproveWriter(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// RejectWriter deletes the application outright (admin only). No soft delete.
func (s *Service) RejectWriter(ctx context.Context, id uuid.UUID) error {
	ok, err := s.store.DeleteWriter(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// ListPendingWriters returns applications waiting on admin review.
func (s *Service) ListPendingWriters(ctx context.Context) ([]*models.Writer, error) {
	return s.store.ListWriters(ctx, false)
}

// ListApprovedWriters returns writers students may be matched with.
func (s *Service) ListApprovedWriters(ctx context.Context) ([]*models.Writer, error) {
	return s.store.ListWriters(ctx, true)
}

// WriterMetrics returns the public counters for an approved writer.
func (s *Service) WriterMetrics(ctx context.Context, email string) (*models.WriterMetrics, error) {
	w, err := s.store.GetWriterByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if w == nil || !w.IsApproved {
		return nil, ErrNotFound
	}
	return &models.WriterMetrics{
		FullName:          w.FullName,
		TasksInProgress:   w.TasksInProgress,
		QuestionsAnswered: w.QuestionsAnswered,
		Reviews:           w.Reviews,
		OnTimeDelivery:    w.OnTimeDelivery,
		CancelledTasks:    w.CancelledTasks,
	}, nil
}
