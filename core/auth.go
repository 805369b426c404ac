package core

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	minEmailLength    = 5
	minPasswordLength = 6
)

// AuthService owns registration, credential checks and session resolution.
type AuthService struct {
	db     StorageAdapter
	hasher PasswordHandler
	signer *TokenSigner
}

func NewAuthService(db StorageAdapter, hasher PasswordHandler, signer *TokenSigner) *AuthService {
	return &AuthService{
		db:     db,
		hasher: hasher,
		signer: signer,
	}
}

// AuthResult contains the user and the freshly issued session token.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// NormalizeEmail trims surrounding whitespace and lowercases the address
// before validation and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) < minEmailLength {
		return ErrEmailTooShort
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// Register creates a new user with email and password and issues their
// first session token. No partial record is left behind on a validation or
// duplicate-email failure: the user is only written after both checks pass.
func (s *AuthService) Register(email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	// Check if the email is already registered. The storage adapter also
	// maps its unique-key violation to ErrEmailTaken, which closes the race
	// between this check and the insert.
	existing, err := s.db.GetUserByEmail(email)
	if err != nil && err != ErrUserNotFound {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.db.CreateUser(user); err != nil {
		if err == ErrEmailTaken {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.appendToken(user, AccessAuth)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates a user with email and password and issues a new
// session token. "No such user" and "wrong password" collapse into the same
// error so callers learn nothing about which one failed.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)

	user, err := s.db.GetUserByEmail(email)
	if err != nil {
		if err == ErrUserNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	token, err := s.appendToken(user, AccessAuth)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Logout removes the exact token from the user's token sequence. Removing a
// token that is already gone is not an error.
func (s *AuthService) Logout(userID, token string) error {
	if err := s.db.RemoveToken(userID, token); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// GetSession resolves a raw token into an authenticated identity.
//
// A token is only accepted when the signature verifies AND the exact token
// string is still present in the owning user's token sequence with the
// "auth" access level. The second check enforces revocation; a signed token
// that was logged out fails here even though Verify alone would accept it.
// Every request re-resolves; nothing is cached across requests.
func (s *AuthService) GetSession(token string) (*SessionData, error) {
	if token == "" {
		return nil, ErrMissingAuthHeader
	}

	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Access != AccessAuth {
		return nil, ErrInvalidToken
	}

	user, err := s.db.GetUserByID(claims.UserID)
	if err != nil {
		if err == ErrUserNotFound {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !hasAuthToken(user, token) {
		return nil, ErrInvalidToken
	}

	return &SessionData{User: user, Token: token}, nil
}

func (s *AuthService) appendToken(user *User, access string) (string, error) {
	token, err := s.signer.Issue(user.ID, access)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	entry := SessionToken{Access: access, Token: token}
	if err := s.db.AppendToken(user.ID, entry); err != nil {
		return "", fmt.Errorf("failed to persist token: %w", err)
	}
	user.Tokens = append(user.Tokens, entry)

	return token, nil
}

func hasAuthToken(u *User, token string) bool {
	for _, t := range u.Tokens {
		if t.Access == AccessAuth && t.Token == token {
			return true
		}
	}
	return false
}
