package rewards

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"punchme/web/auth"
	"punchme/web/db"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type SMSSender interface {
	SendSMS(ctx context.Context, to string, body string) error
}

type EmailSender interface {
	SendEmail(ctx context.Context, to string, subject string, body string) error
}

type TokenIssuer interface {
	Issue(userID uint, role auth.Role) (string, error)
}

type Options struct {
	CodeTTL         time.Duration
	BackdoorCode    string
	TestIdentifiers []string
	AppLink         string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Service implements the PunchMe business rules over a db.Store.
type Service struct {
	store  db.Store
	sms    SMSSender
	mail   EmailSender
	tokens TokenIssuer
	opts   Options

	testIdentifiers map[string]bool

	now     func() time.Time
	newCode func() (string, error)
	newUUID func() string
}

func New(store db.Store, sms SMSSender, mail EmailSender, tokens TokenIssuer, opts Options) *Service {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.CodeTTL == 0 {
		opts.CodeTTL = 10 * time.Minute
	}

	ids := make(map[string]bool, len(opts.TestIdentifiers))
	for _, id := range opts.TestIdentifiers {
		ids[strings.ToLower(strings.TrimSpace(id))] = true
	}

	return &Service{
		store:           store,
		sms:             sms,
		mail:            mail,
		tokens:          tokens,
		opts:            opts,
		testIdentifiers: ids,
		now:             time.Now,
		newCode:         randomCode,
		newUUID:         func() string { return uuid.New().String() },
	}
}

var phoneRegex = regexp.MustCompile(`^\+?1?\d{9,15}$`)

func normalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if !phoneRegex.MatchString(phone) {
		return "", newError(BadRequest, "Phone number must be entered in the format: '+999999999'. Up to 15 digits allowed.")
	}
	return phone, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", newError(BadRequest, "Enter a valid email address.")
	}
	return email, nil
}

func normalizeIdentifier(kind db.CodeKind, identifier string) (string, error) {
	switch kind {
	case db.PhoneCode:
		return normalizePhone(identifier)
	case db.EmailCode:
		return normalizeEmail(identifier)
	}
	return "", newError(BadRequest, "unknown code kind")
}

// notFound turns db.ErrNotFound into a NotFound error with msg and passes
// every other error through.
func notFound(err error, kind Kind, msg string) error {
	if errors.Is(err, db.ErrNotFound) {
		return newError(kind, msg)
	}
	return err
}

func (s *Service) managerRestaurant(ctx context.Context, store db.Store, managerID uint) (*db.Restaurant, error) {
	r, err := store.RestaurantByManager(ctx, managerID)
	if err != nil {
		return nil, notFound(err, NotFound, "Manager does not have a restaurant.")
	}
	return r, nil
}
