package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/tabauth/internal/auth/domain"
	"github.com/aussiebroadwan/tabauth/internal/auth/metrics"
	"github.com/aussiebroadwan/tabauth/internal/auth/session"
	"github.com/aussiebroadwan/tabauth/internal/auth/store"
	"github.com/aussiebroadwan/tabauth/pkg/cryptox"
	"github.com/aussiebroadwan/tabauth/pkg/idx"
	"github.com/aussiebroadwan/tabauth/pkg/jwtx"
	"github.com/aussiebroadwan/tabauth/pkg/slogx"
)

// TokenCodec mints and checks bearer and rotation tokens. *jwtx.Codec
// satisfies it.
type TokenCodec interface {
	MintPair(id jwtx.Identity) (jwtx.Pair, error)
	Verify(token string) (jwtx.Claims, error)
	DecodeUnsafe(token string) (jwtx.Claims, bool)
}

// PasswordHasher digests and checks passwords. *cryptox.Hasher satisfies it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	BotToken string
	Meta     domain.SessionMetadata
}

type LoginInput struct {
	Email    string
	Password string
	BotToken string
	Meta     domain.SessionMetadata
}

// Tokens is a freshly issued bearer and rotation token.
type Tokens struct {
	AccessToken      string
	ExpiresIn        time.Duration
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthResult is returned by Register and Login. Account never carries the
// password hash.
type AuthResult struct {
	Account domain.Account
	Tokens
}

// LogoutResult reports whether a session was actually removed. Logout
// succeeds either way.
type LogoutResult struct {
	Revoked bool
}

// AuthService orchestrates registration, login, token rotation, logout and
// current identity lookups.
type AuthService struct {
	Accounts  store.Accounts
	Sessions  *session.Store
	Codec     TokenCodec
	Passwords PasswordHasher
	Bot       BotVerifier      // optional
	Metrics   metrics.Recorder // optional

	// dummyDigest is verified against when the email is unknown so that
	// the response time does not reveal whether an account exists.
	dummyDigest string
}

// NewAuthService wires an AuthService. bot and rec may be nil.
func NewAuthService(
	accounts store.Accounts,
	sessions *session.Store,
	codec TokenCodec,
	passwords PasswordHasher,
	bot BotVerifier,
	rec metrics.Recorder,
) (*AuthService, error) {
	if rec == nil {
		rec = metrics.Nop{}
	}

	filler, err := cryptox.GeneratePassword(32)
	if err != nil {
		return nil, fmt.Errorf("service: dummy password: %w", err)
	}
	dummy, err := passwords.Hash(filler)
	if err != nil {
		return nil, fmt.Errorf("service: dummy digest: %w", err)
	}

	return &AuthService{
		Accounts:    accounts,
		Sessions:    sessions,
		Codec:       codec,
		Passwords:   passwords,
		Bot:         bot,
		Metrics:     rec,
		dummyDigest: dummy,
	}, nil
}

// Register creates an active regular account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (res AuthResult, err error) {
	defer s.record(metrics.OpRegister, &err)
	l := slogx.FromContext(ctx)

	in.Email = domain.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(registerFields{Email: in.Email, Password: in.Password, Name: in.Name}); err != nil {
		return AuthResult{}, err
	}

	if err := s.checkBot(ctx, in.BotToken, in.Meta.RemoteAddr); err != nil {
		return AuthResult{}, err
	}

	_, err = s.Accounts.GetAccountByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return AuthResult{}, ErrConflict
	case !errors.Is(err, store.ErrNotFound):
		return AuthResult{}, fmt.Errorf("service: lookup account: %w", err)
	}

	digest, err := s.Passwords.Hash(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("service: hash password: %w", err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:           idx.NewAt(now).String(),
		Email:        in.Email,
		PasswordHash: digest,
		Name:         in.Name,
		Role:         domain.RoleRegular,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return AuthResult{}, ErrConflict
		}
		return AuthResult{}, fmt.Errorf("service: create account: %w", err)
	}

	tokens, err := s.issue(ctx, account, in.Meta)
	if err != nil {
		return AuthResult{}, err
	}

	l.Info("account registered", slog.String("account_id", account.ID))
	return AuthResult{Account: account.Public(), Tokens: tokens}, nil
}

// Login authenticates by email and password.
//
// Unknown emails, wrong passwords and deleted accounts all fail with the
// same ErrUnauthorized after the same amount of hashing work. Suspended and
// inactive accounts fail with ErrForbidden, but only once the password has
// been proven.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (res AuthResult, err error) {
	defer s.record(metrics.OpLogin, &err)
	l := slogx.FromContext(ctx)

	in.Email = domain.NormalizeEmail(in.Email)
	if err := validateStruct(loginFields{Email: in.Email, Password: in.Password}); err != nil {
		return AuthResult{}, err
	}

	if err := s.checkBot(ctx, in.BotToken, in.Meta.RemoteAddr); err != nil {
		return AuthResult{}, err
	}

	account, err := s.Accounts.GetAccountByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Passwords.Verify(in.Password, s.dummyDigest)
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("service: lookup account: %w", err)
	}

	if !s.Passwords.Verify(in.Password, account.PasswordHash) {
		l.Info("login failed", slog.String("account_id", account.ID))
		return AuthResult{}, ErrUnauthorized
	}

	if err := checkStatus(account.Status); err != nil {
		l.Info("login refused", slog.String("account_id", account.ID), slog.String("status", string(account.Status)))
		return AuthResult{}, err
	}

	tokens, err := s.issue(ctx, account, in.Meta)
	if err != nil {
		return AuthResult{}, err
	}

	l.Info("login succeeded", slog.String("account_id", account.ID))
	return AuthResult{Account: account.Public(), Tokens: tokens}, nil
}

// Refresh exchanges a rotation token for a new pair. Each rotation token is
// single use.
//
// The matched session is deleted before the replacement is minted. If
// minting or persisting then fails the old token stays dead and the caller
// has to log in again. When several calls race with the same token only the
// one whose delete removes the session wins.
func (s *AuthService) Refresh(ctx context.Context, credential string, meta domain.SessionMetadata) (res Tokens, err error) {
	defer s.record(metrics.OpRefresh, &err)
	l := slogx.FromContext(ctx)

	if credential == "" {
		return Tokens{}, ErrUnauthorized
	}

	claims, err := s.Codec.Verify(credential)
	if err != nil {
		return Tokens{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !claims.IsRefresh() || claims.Subject == "" {
		return Tokens{}, fmt.Errorf("%w: not a rotation token", ErrUnauthorized)
	}

	sess, ok, err := s.Sessions.Match(ctx, claims.Subject, credential)
	if err != nil {
		return Tokens{}, fmt.Errorf("service: match session: %w", err)
	}
	if !ok {
		l.Info("refresh with unknown or reused token", slog.String("account_id", claims.Subject))
		return Tokens{}, fmt.Errorf("%w: no matching session", ErrUnauthorized)
	}

	account, err := s.Accounts.GetAccountByID(ctx, claims.Subject)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Tokens{}, fmt.Errorf("service: lookup account: %w", err)
	}
	if err != nil || account.Status != domain.StatusActive {
		if _, derr := s.Sessions.Delete(ctx, sess.ID); derr != nil {
			l.Warn("failed to delete session of unusable account", slog.String("session_id", sess.ID), slog.Any("error", derr))
		}
		if err != nil {
			return Tokens{}, fmt.Errorf("%w: account gone", ErrUnauthorized)
		}
		return Tokens{}, checkStatus(account.Status)
	}

	deleted, err := s.Sessions.Delete(ctx, sess.ID)
	if err != nil {
		return Tokens{}, fmt.Errorf("service: consume session: %w", err)
	}
	if !deleted {
		l.Info("refresh lost rotation race", slog.String("session_id", sess.ID))
		return Tokens{}, fmt.Errorf("%w: session already consumed", ErrUnauthorized)
	}

	tokens, err := s.issue(ctx, account, meta)
	if err != nil {
		return Tokens{}, err
	}

	l.Debug("session rotated", slog.String("account_id", account.ID), slog.String("session_id", sess.ID))
	return tokens, nil
}

// Logout revokes the session behind credential, if there is one. It never
// fails: anything that goes wrong is logged and swallowed.
func (s *AuthService) Logout(ctx context.Context, credential string) LogoutResult {
	var err error
	defer s.record(metrics.OpLogout, &err)
	l := slogx.FromContext(ctx)

	if credential == "" {
		return LogoutResult{}
	}

	// Authenticity does not matter here: the token only selects which
	// sessions to scan, and a match still requires the exact credential.
	claims, ok := s.Codec.DecodeUnsafe(credential)
	if !ok || claims.Subject == "" {
		return LogoutResult{}
	}

	sess, found, mErr := s.Sessions.Match(ctx, claims.Subject, credential)
	if mErr != nil {
		l.Warn("logout session lookup failed", slog.Any("error", mErr))
		return LogoutResult{}
	}
	if !found {
		return LogoutResult{}
	}

	deleted, dErr := s.Sessions.Delete(ctx, sess.ID)
	if dErr != nil {
		l.Warn("logout session delete failed", slog.String("session_id", sess.ID), slog.Any("error", dErr))
		return LogoutResult{}
	}
	return LogoutResult{Revoked: deleted}
}

// ResolveCurrentIdentity re-reads the account behind verified bearer claims.
// Claims are a snapshot from issuance time, so status is checked against the
// stored account.
func (s *AuthService) ResolveCurrentIdentity(ctx context.Context, id jwtx.Identity) (acc domain.Account, err error) {
	defer s.record(metrics.OpMe, &err)

	if id.Subject == "" {
		return domain.Account{}, ErrUnauthorized
	}

	account, err := s.Accounts.GetAccountByID(ctx, id.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrUnauthorized
		}
		return domain.Account{}, fmt.Errorf("service: lookup account: %w", err)
	}

	if err := checkStatus(account.Status); err != nil {
		return domain.Account{}, err
	}
	return account.Public(), nil
}

// SetAccountStatus changes an account's status. Moving an account out of
// active also revokes all of its sessions.
func (s *AuthService) SetAccountStatus(ctx context.Context, email string, status domain.Status) (domain.Account, error) {
	if !status.Valid() {
		return domain.Account{}, &ValidationError{Fields: []FieldError{{Field: "status", Message: "is invalid"}}}
	}

	account, err := s.Accounts.GetAccountByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return domain.Account{}, err
	}
	if err := s.Accounts.UpdateAccountStatus(ctx, account.ID, status); err != nil {
		return domain.Account{}, fmt.Errorf("service: update status: %w", err)
	}

	if status != domain.StatusActive {
		if _, err := s.Sessions.DeleteAllForAccount(ctx, account.ID); err != nil {
			return domain.Account{}, err
		}
	}

	account.Status = status
	return account.Public(), nil
}

// CreateAccount provisions an account with the given role without signing it
// in. It is the operator path for creating administrators and moderators.
func (s *AuthService) CreateAccount(
	ctx context.Context,
	email, password, name string,
	role domain.Role,
) (domain.Account, error) {
	email = domain.NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := validateStruct(registerFields{Email: email, Password: password, Name: name}); err != nil {
		return domain.Account{}, err
	}
	if !role.Valid() {
		return domain.Account{}, &ValidationError{Fields: []FieldError{{Field: "role", Message: "is invalid"}}}
	}

	digest, err := s.Passwords.Hash(password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("service: hash password: %w", err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		PasswordHash: digest,
		Name:         name,
		Role:         role,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrConflict
		}
		return domain.Account{}, fmt.Errorf("service: create account: %w", err)
	}
	return account.Public(), nil
}

// RevokeAllSessions logs the account out on every device.
func (s *AuthService) RevokeAllSessions(ctx context.Context, email string) (int64, error) {
	account, err := s.Accounts.GetAccountByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return 0, err
	}
	return s.Sessions.DeleteAllForAccount(ctx, account.ID)
}

// issue mints a pair for account and persists the rotation token's session.
func (s *AuthService) issue(ctx context.Context, account domain.Account, meta domain.SessionMetadata) (Tokens, error) {
	pair, err := s.Codec.MintPair(jwtx.Identity{
		Subject: account.ID,
		Email:   account.Email,
		Role:    string(account.Role),
		Name:    account.Name,
	})
	if err != nil {
		return Tokens{}, fmt.Errorf("service: mint tokens: %w", err)
	}

	if _, err := s.Sessions.Create(ctx, account.ID, pair.RefreshToken, pair.RefreshExpiresAt, meta); err != nil {
		return Tokens{}, fmt.Errorf("service: persist session: %w", err)
	}

	return Tokens{
		AccessToken:      pair.AccessToken,
		ExpiresIn:        pair.AccessExpiresIn,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}, nil
}

// checkBot consults the bot gate when both a verifier and a token are present.
func (s *AuthService) checkBot(ctx context.Context, token, remoteIP string) error {
	if s.Bot == nil || token == "" {
		return nil
	}
	ok, err := s.Bot.Verify(ctx, token, remoteIP)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBotCheckFailed, err)
	}
	if !ok {
		return ErrBotCheckFailed
	}
	return nil
}

func (s *AuthService) record(op string, err *error) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.Operation(op, outcome(*err))
}

// checkStatus maps an account status to the error a caller sees.
func checkStatus(status domain.Status) error {
	switch status {
	case domain.StatusActive:
		return nil
	case domain.StatusSuspended, domain.StatusInactive:
		return ErrForbidden
	default:
		return ErrUnauthorized
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrUnauthorized):
		return metrics.OutcomeUnauthorized
	case errors.Is(err, ErrForbidden):
		return metrics.OutcomeForbidden
	case errors.Is(err, ErrConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, ErrBotCheckFailed):
		return metrics.OutcomeBotRejected
	case IsValidation(err):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
