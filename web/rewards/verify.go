package rewards

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"punchme/web/auth"
	"punchme/web/db"
	"punchme/web/logs"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	codeDigits = 6
	// maxCodeAttempts wrong guesses burn the pending code.
	maxCodeAttempts = 5
)

// Profile carries the fields a new account is created with.
type Profile struct {
	FirstName string
	LastName  string
	Email     string
}

// Session is the result of a successful verification. Exactly one of
// Customer and Manager is set.
type Session struct {
	Token    string
	Customer *db.Customer
	Manager  *db.Manager
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func validCodeFormat(code string) bool {
	if len(code) != codeDigits {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *Service) accountExists(ctx context.Context, kind db.CodeKind, identifier string) (bool, error) {
	var err error
	if kind == db.PhoneCode {
		_, err = s.store.CustomerByPhone(ctx, identifier)
	} else {
		_, err = s.store.ManagerByEmail(ctx, identifier)
	}
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, db.ErrNotFound):
		return false, nil
	}
	return false, err
}

// SendCode replaces any pending code for identifier with a fresh one and
// delivers it by SMS (phone) or email. The stored code stays valid even when
// delivery fails.
func (s *Service) SendCode(ctx context.Context, kind db.CodeKind, identifier string, isRegister bool) error {
	identifier, err := normalizeIdentifier(kind, identifier)
	if err != nil {
		return err
	}

	exists, err := s.accountExists(ctx, kind, identifier)
	if err != nil {
		return err
	}
	if isRegister && exists {
		return newError(Conflict, "An account with this "+identifierLabel(kind)+" already exists.")
	}
	if !isRegister && !exists {
		return newError(NotFound, "No account with this "+identifierLabel(kind)+" exists.")
	}

	code := s.opts.BackdoorCode
	if !s.testIdentifiers[identifier] || code == "" {
		if code, err = s.newCode(); err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}

	err = s.store.Transaction(ctx, func(tx db.Store) error {
		if err := tx.DeleteCodes(ctx, kind, identifier); err != nil {
			return err
		}
		return tx.CreateCode(ctx, &db.OneTimeCode{
			Kind:       kind,
			Identifier: identifier,
			CodeHash:   string(hash),
			ExpiresAt:  s.now().Add(s.opts.CodeTTL),
		})
	})
	if err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	body := fmt.Sprintf("Your code for Punchme is %s", code)
	if kind == db.PhoneCode {
		err = s.sms.SendSMS(ctx, identifier, body)
	} else {
		err = s.mail.SendEmail(ctx, identifier, "Your PunchMe code", body)
	}
	if err != nil {
		logs.Log.WithFields(logrus.Fields{"kind": kind, "identifier": identifier}).WithError(err).Error("code delivery failed")
		return wrapError(Internal, "Failed to deliver the verification code.", err)
	}
	return nil
}

func identifierLabel(kind db.CodeKind) string {
	if kind == db.PhoneCode {
		return "phone number"
	}
	return "email"
}

// consumeCode checks code against the pending row for identifier and deletes
// the row on success, so a code verifies at most once. Each mismatch is counted
// and the row is deleted after maxCodeAttempts of them.
func (s *Service) consumeCode(ctx context.Context, kind db.CodeKind, identifier, code string) error {
	if !validCodeFormat(code) {
		return newError(BadRequest, "code does not match")
	}

	var mismatch error
	err := s.store.Transaction(ctx, func(tx db.Store) error {
		row, err := tx.CodeFor(ctx, kind, identifier)
		if err != nil {
			return notFound(err, BadRequest, "code does not match")
		}
		if !row.ExpiresAt.After(s.now()) {
			return newError(BadRequest, "code has expired")
		}
		if bcrypt.CompareHashAndPassword([]byte(row.CodeHash), []byte(code)) != nil {
			// reported after the transaction commits
			mismatch = newError(BadRequest, "code does not match")
			row.Attempts++
			if row.Attempts >= maxCodeAttempts {
				mismatch = newError(BadRequest, "too many attempts, request a new code")
				return tx.DeleteCodes(ctx, kind, identifier)
			}
			return tx.SaveCode(ctx, row)
		}

		row.IsVerified = true
		if err := tx.SaveCode(ctx, row); err != nil {
			return err
		}
		return tx.DeleteCodes(ctx, kind, identifier)
	})
	if err != nil {
		return err
	}
	return mismatch
}

// VerifyAndRegister consumes the code and creates a customer (phone) or a
// manager (email) account.
func (s *Service) VerifyAndRegister(ctx context.Context, kind db.CodeKind, identifier, code string, p Profile) (*Session, error) {
	identifier, err := normalizeIdentifier(kind, identifier)
	if err != nil {
		return nil, err
	}
	if kind == db.PhoneCode && p.Email != "" {
		if p.Email, err = normalizeEmail(p.Email); err != nil {
			return nil, err
		}
	}

	if err := s.consumeCode(ctx, kind, identifier, code); err != nil {
		return nil, err
	}

	if kind == db.PhoneCode {
		customer := &db.Customer{FirstName: p.FirstName, LastName: p.LastName, Email: p.Email, PhoneNumber: identifier}
		if err := s.store.CreateCustomer(ctx, customer); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				return nil, newError(Conflict, "Phone number already registered")
			}
			return nil, err
		}
		return s.session(customer.ID, auth.RoleCustomer, customer, nil)
	}

	manager := &db.Manager{FirstName: p.FirstName, LastName: p.LastName, Email: identifier}
	if err := s.store.CreateManager(ctx, manager); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, newError(Conflict, "Email already registered")
		}
		return nil, err
	}
	return s.session(manager.ID, auth.RoleManager, nil, manager)
}

func (s *Service) VerifyAndLogin(ctx context.Context, kind db.CodeKind, identifier, code string) (*Session, error) {
	identifier, err := normalizeIdentifier(kind, identifier)
	if err != nil {
		return nil, err
	}
	if err := s.consumeCode(ctx, kind, identifier, code); err != nil {
		return nil, err
	}

	if kind == db.PhoneCode {
		customer, err := s.store.CustomerByPhone(ctx, identifier)
		if err != nil {
			return nil, notFound(err, NotFound, "No account with this phone number exists.")
		}
		return s.session(customer.ID, auth.RoleCustomer, customer, nil)
	}

	manager, err := s.store.ManagerByEmail(ctx, identifier)
	if err != nil {
		return nil, notFound(err, NotFound, "No account with this email exists.")
	}
	return s.session(manager.ID, auth.RoleManager, nil, manager)
}

func (s *Service) session(id uint, role auth.Role, c *db.Customer, m *db.Manager) (*Session, error) {
	token, err := s.tokens.Issue(id, role)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Customer: c, Manager: m}, nil
}
