package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/tabauth/internal/auth/domain"
	"github.com/aussiebroadwan/tabauth/internal/auth/metrics"
	"github.com/aussiebroadwan/tabauth/internal/auth/service"
	"github.com/aussiebroadwan/tabauth/internal/auth/session"
	"github.com/aussiebroadwan/tabauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tabauth/pkg/cryptox"
	"github.com/aussiebroadwan/tabauth/pkg/jwtx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var (
	testKey    = []byte("0123456789abcdef0123456789abcdef")
	fastParams = cryptox.Params{Memory: 64, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16}
)

const (
	aliceEmail    = "alice@example.com"
	alicePassword = "Passw0rd1"
)

type fixture struct {
	svc     *service.AuthService
	store   *sqlite.Store
	codec   *jwtx.Codec
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, bot service.BotVerifier) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewCodec(testKey)
	require.NoError(t, err)

	sessions := session.New(st.Sessions(), cryptox.NewHasher(fastParams, "pepper", cryptox.MaxCredentialLength))
	passwords := cryptox.NewHasher(fastParams, "pepper", cryptox.MaxPasswordLength)
	m := metrics.New()

	svc, err := service.NewAuthService(st.Accounts(), sessions, codec, passwords, bot, m)
	require.NoError(t, err)

	return &fixture{svc: svc, store: st, codec: codec, metrics: m}
}

func (f *fixture) registerAlice(t *testing.T) service.AuthResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), service.RegisterInput{
		Email:    aliceEmail,
		Password: alicePassword,
		Name:     "Alice",
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) count(op, outcome string) float64 {
	return testutil.ToFloat64(f.metrics.OperationsCounter().WithLabelValues(op, outcome))
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, service.RegisterInput{
		Email:    "  Alice@Example.COM ",
		Password: alicePassword,
		Name:     " Alice ",
		Meta:     domain.SessionMetadata{RemoteAddr: "203.0.113.1", UserAgent: "test"},
	})
	require.NoError(t, err)
	require.Equal(t, aliceEmail, res.Account.Email)
	require.Equal(t, "Alice", res.Account.Name)
	require.Equal(t, domain.RoleRegular, res.Account.Role)
	require.Equal(t, domain.StatusActive, res.Account.Status)
	require.Empty(t, res.Account.PasswordHash)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	require.Equal(t, f.codec.AccessTTL(), res.ExpiresIn)

	claims, err := f.codec.Verify(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, res.Account.ID, claims.Subject)
	require.Equal(t, aliceEmail, claims.Email)
	require.Equal(t, "regular", claims.Role)
	require.False(t, claims.IsRefresh())

	stored, err := f.store.Accounts().GetAccountByEmail(ctx, aliceEmail)
	require.NoError(t, err)
	require.NotEqual(t, alicePassword, stored.PasswordHash)

	active, err := f.store.Sessions().ListActiveSessions(ctx, res.Account.ID, time.Now())
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "203.0.113.1", active[0].RemoteAddr)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := f.svc.Register(ctx, service.RegisterInput{Email: "ALICE@example.com", Password: alicePassword})
		require.ErrorIs(t, err, service.ErrConflict)
		require.Equal(t, 1.0, f.count(metrics.OpRegister, metrics.OutcomeConflict))
	})
}

func TestAuthService_RegisterValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	tests := []struct {
		name   string
		in     service.RegisterInput
		fields []string
	}{
		{"bad email", service.RegisterInput{Email: "not-an-email", Password: alicePassword}, []string{"email"}},
		{"weak password", service.RegisterInput{Email: aliceEmail, Password: "password"}, []string{"password"}},
		{"short password", service.RegisterInput{Email: aliceEmail, Password: "Pa1"}, []string{"password"}},
		{"short name", service.RegisterInput{Email: aliceEmail, Password: alicePassword, Name: "A"}, []string{"name"}},
		{"everything missing", service.RegisterInput{}, []string{"email", "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tt.in)
			require.True(t, service.IsValidation(err), "got %v", err)

			var ve *service.ValidationError
			require.True(t, errors.As(err, &ve))
			var got []string
			for _, fe := range ve.Fields {
				got = append(got, fe.Field)
				require.NotEmpty(t, fe.Message)
			}
			require.Equal(t, tt.fields, got)
		})
	}
}

func TestAuthService_LoginDoesNotRevealAccounts(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.registerAlice(t)
	ctx := context.Background()

	_, unknownErr := f.svc.Login(ctx, service.LoginInput{Email: "bob@example.com", Password: alicePassword})
	_, wrongErr := f.svc.Login(ctx, service.LoginInput{Email: aliceEmail, Password: "Wr0ngPassword"})

	require.ErrorIs(t, unknownErr, service.ErrUnauthorized)
	require.ErrorIs(t, wrongErr, service.ErrUnauthorized)
	require.Equal(t, unknownErr.Error(), wrongErr.Error())
	require.Equal(t, 2.0, f.count(metrics.OpLogin, metrics.OutcomeUnauthorized))
}

func TestAuthService_LoginStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status domain.Status
		want   error
	}{
		{domain.StatusActive, nil},
		{domain.StatusInactive, service.ErrForbidden},
		{domain.StatusSuspended, service.ErrForbidden},
		{domain.StatusDeleted, service.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, nil)
			reg := f.registerAlice(t)
			ctx := context.Background()
			require.NoError(t, f.store.Accounts().UpdateAccountStatus(ctx, reg.Account.ID, tt.status))

			_, err := f.svc.Login(ctx, service.LoginInput{Email: aliceEmail, Password: alicePassword})
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)

			// A wrong password never reveals the status.
			_, err = f.svc.Login(ctx, service.LoginInput{Email: aliceEmail, Password: "Wr0ngPassword"})
			require.ErrorIs(t, err, service.ErrUnauthorized)
		})
	}
}

func TestAuthService_RefreshRotates(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	reg := f.registerAlice(t)
	ctx := context.Background()

	rotated, err := f.svc.Refresh(ctx, reg.RefreshToken, domain.SessionMetadata{})
	require.NoError(t, err)
	require.NotEqual(t, reg.RefreshToken, rotated.RefreshToken)
	require.NotEqual(t, reg.AccessToken, rotated.AccessToken)

	claims, err := f.codec.Verify(rotated.AccessToken)
	require.NoError(t, err)
	require.Equal(t, reg.Account.ID, claims.Subject)
	require.Equal(t, aliceEmail, claims.Email)

	t.Run("replaying the consumed token fails", func(t *testing.T) {
		_, err := f.svc.Refresh(ctx, reg.RefreshToken, domain.SessionMetadata{})
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("the replacement still works", func(t *testing.T) {
		_, err := f.svc.Refresh(ctx, rotated.RefreshToken, domain.SessionMetadata{})
		require.NoError(t, err)
	})

	active, err := f.store.Sessions().ListActiveSessions(ctx, reg.Account.ID, time.Now())
	require.NoError(t, err)
	require.Len(t, active, 1)
}

func TestAuthService_RefreshRejects(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	reg := f.registerAlice(t)
	ctx := context.Background()

	other, err := jwtx.NewCodec([]byte("fedcba9876543210fedcba9876543210"))
	require.NoError(t, err)
	forged, err := other.Mint(jwtx.NewRefreshClaims(reg.Account.ID), time.Hour)
	require.NoError(t, err)

	unknown, err := f.codec.Mint(jwtx.NewRefreshClaims(reg.Account.ID), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"bearer token", reg.AccessToken},
		{"wrong key", forged},
		{"never issued", unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Refresh(ctx, tt.token, domain.SessionMetadata{})
			require.ErrorIs(t, err, service.ErrUnauthorized)
		})
	}

	// None of the failures touched the real session.
	_, err = f.svc.Refresh(ctx, reg.RefreshToken, domain.SessionMetadata{})
	require.NoError(t, err)
}

func TestAuthService_RefreshSuspendedAccount(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	reg := f.registerAlice(t)
	ctx := context.Background()

	require.NoError(t, f.store.Accounts().UpdateAccountStatus(ctx, reg.Account.ID, domain.StatusSuspended))

	_, err := f.svc.Refresh(ctx, reg.RefreshToken, domain.SessionMetadata{})
	require.ErrorIs(t, err, service.ErrForbidden)

	active, err := f.store.Sessions().ListActiveSessions(ctx, reg.Account.ID, time.Now())
	require.NoError(t, err)
	require.Empty(t, active, "session of a suspended account is dropped")
}

func TestAuthService_ConcurrentRefreshHasOneWinner(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	reg := f.registerAlice(t)
	ctx := context.Background()

	const racers = 6
	var (
		wg       sync.WaitGroup
		wins     atomic.Int32
		rejected atomic.Int32
		start    = make(chan struct{})
	)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Refresh(ctx, reg.RefreshToken, domain.SessionMetadata{})
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, service.ErrUnauthorized):
				rejected.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.EqualValues(t, 1, wins.Load())
	require.EqualValues(t, racers-1, rejected.Load())

	active, err := f.store.Sessions().ListActiveSessions(ctx, reg.Account.ID, time.Now())
	require.NoError(t, err)
	require.Len(t, active, 1)
}

func TestAuthService_Logout(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	reg := f.registerAlice(t)
	ctx := context.Background()

	require.Equal(t, service.LogoutResult{Revoked: true}, f.svc.Logout(ctx, reg.RefreshToken))

	_, err := f.svc.Refresh(ctx, reg.RefreshToken, domain.SessionMetadata{})
	require.ErrorIs(t, err, service.ErrUnauthorized)

	t.Run("always succeeds", func(t *testing.T) {
		for _, token := range []string{"", "garbage", reg.RefreshToken, reg.AccessToken} {
			require.Equal(t, service.LogoutResult{}, f.svc.Logout(ctx, token))
		}
	})
}

func TestAuthService_ResolveCurrentIdentity(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	reg := f.registerAlice(t)
	ctx := context.Background()

	claims, err := f.codec.Verify(reg.AccessToken)
	require.NoError(t, err)

	acc, err := f.svc.ResolveCurrentIdentity(ctx, claims.Identity())
	require.NoError(t, err)
	require.Equal(t, reg.Account.ID, acc.ID)
	require.Empty(t, acc.PasswordHash)

	_, err = f.svc.ResolveCurrentIdentity(ctx, jwtx.Identity{})
	require.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = f.svc.ResolveCurrentIdentity(ctx, jwtx.Identity{Subject: "01HZZZZZZZZZZZZZZZZZZZZZZZ"})
	require.ErrorIs(t, err, service.ErrUnauthorized)

	require.NoError(t, f.store.Accounts().UpdateAccountStatus(ctx, reg.Account.ID, domain.StatusDeleted))
	_, err = f.svc.ResolveCurrentIdentity(ctx, claims.Identity())
	require.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestAuthService_BotGate(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	bot := service.BotVerifierFunc(func(_ context.Context, token, remoteIP string) (bool, error) {
		calls.Add(1)
		switch token {
		case "human":
			return true, nil
		case "broken":
			return false, errors.New("provider unreachable")
		default:
			return false, nil
		}
	})

	f := newFixture(t, bot)
	ctx := context.Background()
	in := service.RegisterInput{Email: aliceEmail, Password: alicePassword}

	in.BotToken = "robot"
	_, err := f.svc.Register(ctx, in)
	require.ErrorIs(t, err, service.ErrBotCheckFailed)

	in.BotToken = "broken"
	_, err = f.svc.Register(ctx, in)
	require.ErrorIs(t, err, service.ErrBotCheckFailed)

	in.BotToken = "human"
	_, err = f.svc.Register(ctx, in)
	require.NoError(t, err)

	// No token means the gate is skipped.
	_, err = f.svc.Login(ctx, service.LoginInput{Email: aliceEmail, Password: alicePassword})
	require.NoError(t, err)

	require.EqualValues(t, 3, calls.Load())
	require.Equal(t, 2.0, f.count(metrics.OpRegister, metrics.OutcomeBotRejected))
}

func TestAuthService_OperatorActions(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	admin, err := f.svc.CreateAccount(ctx, "root@example.com", alicePassword, "Root", domain.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, admin.Role)

	_, err = f.svc.CreateAccount(ctx, "root@example.com", alicePassword, "Root", domain.RoleAdmin)
	require.ErrorIs(t, err, service.ErrConflict)

	_, err = f.svc.CreateAccount(ctx, "x@example.com", alicePassword, "", domain.Role("owner"))
	require.True(t, service.IsValidation(err))

	for range 3 {
		_, err := f.svc.Login(ctx, service.LoginInput{Email: "root@example.com", Password: alicePassword})
		require.NoError(t, err)
	}

	n, err := f.svc.RevokeAllSessions(ctx, "ROOT@example.com")
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	_, err = f.svc.SetAccountStatus(ctx, "root@example.com", domain.Status("frozen"))
	require.True(t, service.IsValidation(err))

	_, err = f.svc.SetAccountStatus(ctx, "nobody@example.com", domain.StatusSuspended)
	require.Error(t, err)
}

func TestAuthService_Lifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	reg := f.registerAlice(t)

	claims, err := f.codec.Verify(reg.AccessToken)
	require.NoError(t, err)
	me, err := f.svc.ResolveCurrentIdentity(ctx, claims.Identity())
	require.NoError(t, err)
	require.Equal(t, aliceEmail, me.Email)

	login, err := f.svc.Login(ctx, service.LoginInput{Email: aliceEmail, Password: alicePassword})
	require.NoError(t, err)

	rotated, err := f.svc.Refresh(ctx, login.RefreshToken, domain.SessionMetadata{})
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, login.RefreshToken, domain.SessionMetadata{})
	require.ErrorIs(t, err, service.ErrUnauthorized)

	require.True(t, f.svc.Logout(ctx, rotated.RefreshToken).Revoked)
	_, err = f.svc.Refresh(ctx, rotated.RefreshToken, domain.SessionMetadata{})
	require.ErrorIs(t, err, service.ErrUnauthorized)

	suspended, err := f.svc.SetAccountStatus(ctx, aliceEmail, domain.StatusSuspended)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuspended, suspended.Status)

	// The bearer token itself is still valid; the stored status wins.
	_, err = f.svc.ResolveCurrentIdentity(ctx, claims.Identity())
	require.ErrorIs(t, err, service.ErrForbidden)

	// Suspension revoked the session minted at registration.
	_, err = f.svc.Refresh(ctx, reg.RefreshToken, domain.SessionMetadata{})
	require.Error(t, err)
}
