package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hostelgrub/api/internal/auth"
	"github.com/hostelgrub/api/internal/enum"
	"github.com/hostelgrub/api/internal/store"
)

// Caller is the resolved identity of a protected request: the matched session
// plus the document snapshot it was found in.
type Caller struct {
	Doc     *store.Document
	Session store.Session
}

// StudentLoginResult is returned by the student login flows.
type StudentLoginResult struct {
	Token   string
	Student store.Student
}

// AdminLoginResult is returned by LoginAdmin.
type AdminLoginResult struct {
	Token   string
	AdminID string
}

// SessionService manages student and admin identities and their bearer
// sessions. A new login for an identity replaces any earlier session for it.
// Sessions do not expire.
type SessionService struct {
	store    DocumentStore
	now      func() time.Time
	newToken func() (string, error)
}

// NewSessionService creates a new SessionService.
func NewSessionService(s DocumentStore) *SessionService {
	return &SessionService{store: s, now: time.Now, newToken: auth.NewToken}
}

// LoginStudentByEmail upserts the student keyed by email and opens a session.
func (s *SessionService) LoginStudentByEmail(ctx context.Context, name, email string) (*StudentLoginResult, error) {
	name = strings.TrimSpace(name)
	email = auth.NormalizeEmail(email)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, Validation("valid name and email are required")
	}
	return s.loginStudent(ctx, name, email, enum.ProviderEmail)
}

// LoginStudentByGoogle is LoginStudentByEmail for identities vouched for by
// Google; googleID must be present but is not stored.
func (s *SessionService) LoginStudentByGoogle(ctx context.Context, name, email, googleID string) (*StudentLoginResult, error) {
	name = strings.TrimSpace(name)
	email = auth.NormalizeEmail(email)
	googleID = strings.TrimSpace(googleID)
	if name == "" || email == "" || googleID == "" || !strings.Contains(email, "@") {
		return nil, Validation("google login requires name, email, and googleId")
	}
	return s.loginStudent(ctx, name, email, enum.ProviderGoogle)
}

func (s *SessionService) loginStudent(ctx context.Context, name, email, provider string) (*StudentLoginResult, error) {
	token, err := s.newToken()
	if err != nil {
		return nil, err
	}

	var result StudentLoginResult
	err = s.store.Update(ctx, func(doc *store.Document) error {
		var student *store.Student
		if i, ok := doc.StudentIndex()[email]; ok {
			student = &doc.Students[i]
			student.Name = name
			student.Provider = provider
		} else {
			doc.Students = append(doc.Students, store.Student{
				ID:       "stu-" + uuid.NewString(),
				Name:     name,
				Email:    email,
				Provider: provider,
			})
			student = &doc.Students[len(doc.Students)-1]
		}

		rotateSession(doc, store.Session{
			Token:     token,
			Role:      enum.RoleStudent,
			UserID:    student.ID,
			CreatedAt: s.now().UTC(),
		})

		result = StudentLoginResult{Token: token, Student: *student}
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr("student login", err)
	}
	return &result, nil
}

// LoginAdmin checks pin against the singleton admin account.
func (s *SessionService) LoginAdmin(ctx context.Context, pin string) (*AdminLoginResult, error) {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return nil, Validation("pin is required")
	}

	token, err := s.newToken()
	if err != nil {
		return nil, err
	}

	var result AdminLoginResult
	err = s.store.Update(ctx, func(doc *store.Document) error {
		admin := doc.Admin()
		if admin == nil || !auth.VerifyPIN(admin.PinHash, pin) {
			return Unauthorized("invalid admin pin")
		}

		rotateSession(doc, store.Session{
			Token:     token,
			Role:      enum.RoleAdmin,
			UserID:    admin.ID,
			CreatedAt: s.now().UTC(),
		})

		result = AdminLoginResult{Token: token, AdminID: admin.ID}
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr("admin login", err)
	}
	return &result, nil
}

// Logout deletes the session holding token. An empty token is a no-op.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.store.Update(ctx, func(doc *store.Document) error {
		kept := doc.Sessions[:0]
		for _, sess := range doc.Sessions {
			if sess.Token != token {
				kept = append(kept, sess)
			}
		}
		doc.Sessions = kept
		return nil
	})
	return wrapStoreErr("logout", err)
}

// ResolveSession finds the session for token at role.
func (s *SessionService) ResolveSession(ctx context.Context, token, role string) (*Caller, error) {
	if token == "" {
		return nil, Unauthorized("missing auth token")
	}

	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, wrapStoreErr("resolve session", err)
	}

	sess := doc.FindSession(token, role)
	if sess == nil {
		return nil, Unauthorized("invalid or expired token")
	}
	return &Caller{Doc: doc, Session: *sess}, nil
}

// rotateSession drops every session for the same role and user, then adds sess.
func rotateSession(doc *store.Document, sess store.Session) {
	kept := doc.Sessions[:0]
	for _, existing := range doc.Sessions {
		if existing.Role == sess.Role && existing.UserID == sess.UserID {
			continue
		}
		kept = append(kept, existing)
	}
	doc.Sessions = append(kept, sess)
}
