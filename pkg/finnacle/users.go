package finnacle

import (
	"database/sql"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is an account holder. The password hash never leaves this package.
type User struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

// RegisterRequest defines inputs to create a user.
type RegisterRequest struct {
	FullName string
	Email    string
	Password string
}

// AuthResult bundles a user with a freshly issued session token.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Register creates a user and returns it with a session token.
func (c *Core) Register(req RegisterRequest) (AuthResult, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := normalizeEmail(req.Email)
	if fullName == "" || email == "" || req.Password == "" {
		return AuthResult{}, NewError(ErrCodeInvalidInput, "full name, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return AuthResult{}, NewError(ErrCodeInvalidInput, "invalid email address")
	}

	var exists int
	err := c.db.QueryRow("SELECT 1 FROM users WHERE email = ?", email).Scan(&exists)
	if err == nil {
		return AuthResult{}, NewError(ErrCodeDuplicate, "email already in use")
	}
	if err != sql.ErrNoRows {
		return AuthResult{}, WrapError(ErrCodeDatabase, "check existing user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, WrapError(ErrCodeInternal, "hash password", err)
	}

	id := uuid.NewString()
	if _, err := c.db.Exec(
		"INSERT INTO users (id, full_name, email, password_hash) VALUES (?, ?, ?, ?)",
		id, fullName, email, string(hash),
	); err != nil {
		return AuthResult{}, WrapError(ErrCodeDatabase, "insert user", err)
	}

	user, err := c.GetUser(id)
	if err != nil {
		return AuthResult{}, err
	}
	token, err := c.issueToken(id)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and returns the user with a session token.
func (c *Core) Login(email, password string) (AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, NewError(ErrCodeInvalidInput, "email and password are required")
	}

	var user User
	var hash string
	err := c.db.QueryRow(
		"SELECT id, full_name, email, password_hash, created_at FROM users WHERE email = ?",
		email,
	).Scan(&user.ID, &user.FullName, &user.Email, &hash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return AuthResult{}, NewError(ErrCodeUnauthorized, "invalid credentials")
	}
	if err != nil {
		return AuthResult{}, WrapError(ErrCodeDatabase, "load user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return AuthResult{}, NewError(ErrCodeUnauthorized, "invalid credentials")
	}

	token, err := c.issueToken(user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}

// GetUser fetches a user by ID.
func (c *Core) GetUser(id string) (User, error) {
	var user User
	err := c.db.QueryRow(
		"SELECT id, full_name, email, created_at FROM users WHERE id = ?",
		id,
	).Scan(&user.ID, &user.FullName, &user.Email, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return User{}, NewError(ErrCodeNotFound, "user not found")
	}
	if err != nil {
		return User{}, WrapError(ErrCodeDatabase, "load user", err)
	}
	return user, nil
}

// ownerExists validates an owner identifier before any aggregation runs.
func (c *Core) ownerExists(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return NewError(ErrCodeInvalidOwner, "owner id is required")
	}
	var one int
	err := c.db.QueryRow("SELECT 1 FROM users WHERE id = ?", ownerID).Scan(&one)
	if err == sql.ErrNoRows {
		return NewError(ErrCodeInvalidOwner, "unknown owner: "+ownerID)
	}
	if err != nil {
		return WrapError(ErrCodeDatabase, "validate owner", err)
	}
	return nil
}

func (c *Core) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.jwtSecret)
	if err != nil {
		return "", WrapError(ErrCodeInternal, "sign token", err)
	}
	return signed, nil
}

// ParseToken validates a session token and returns the owner ID it carries.
func (c *Core) ParseToken(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return c.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", WrapError(ErrCodeUnauthorized, "invalid token", err)
	}
	if claims.Subject == "" {
		return "", NewError(ErrCodeUnauthorized, "token has no subject")
	}
	return claims.Subject, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
