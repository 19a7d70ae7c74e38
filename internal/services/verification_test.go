package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/landing-backend/internal/models"
	"github.com/AnshRaj112/landing-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sixDigits = regexp.MustCompile(`^[0-9]{6}$`)
	hex32     = regexp.MustCompile(`^[0-9a-f]{32}$`)
)

type verificationFixture struct {
	clock    *fakeClock
	store    *MemoryStore
	accounts *MemoryAccountRepository
	svc      *VerificationService
}

func newVerificationFixture(t *testing.T) *verificationFixture {
	t.Helper()
	clock := newFakeClock()
	store := NewMemoryStore(clock.Now)
	accounts := NewMemoryAccountRepository()
	return &verificationFixture{
		clock:    clock,
		store:    store,
		accounts: accounts,
		svc:      NewVerificationService(store, accounts, 0, 0, WithClock(clock.Now)),
	}
}

func TestRequestCode_StoresNormalizedKey(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	issued, err := f.svc.RequestCode(ctx, " Foo@Bar.com ")
	require.NoError(t, err)
	assert.Equal(t, "foo@bar.com", issued.Email)
	assert.Regexp(t, sixDigits, issued.Code)
	assert.Equal(t, f.clock.Now().Add(600*time.Second), issued.ExpiresAt)

	e, found, err := f.store.Get(ctx, "verif:foo@bar.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, issued.Code, e.Value)
	assert.Equal(t, issued.ExpiresAt, e.ExpiresAt)
}

func TestRequestCode_ZeroPadded(t *testing.T) {
	f := newVerificationFixture(t)
	// An all-zero random source makes rand.Int return 0
	f.svc = NewVerificationService(f.store, f.accounts, 0, 0, WithClock(f.clock.Now), WithRandom(zeroReader{}))

	issued, err := f.svc.RequestCode(context.Background(), "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "000000", issued.Code)
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestBlankEmail_FailsBeforeTouchingStore(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	for _, email := range []string{"", "   ", "\t\n"} {
		_, err := f.svc.RequestCode(ctx, email)
		var ve *utils.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "email required", ve.Message)

		_, err = f.svc.VerifyCode(ctx, email, "123456")
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "email and code required", ve.Message)
	}

	_, err := f.svc.VerifyCode(ctx, "a@b.c", "  ")
	var ve *utils.ValidationError
	require.ErrorAs(t, err, &ve)

	assert.Equal(t, 0, f.store.Sweep())
	f.store.mu.Lock()
	assert.Empty(t, f.store.entries)
	f.store.mu.Unlock()
}

func TestVerifyCode_SingleUse(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	issued, err := f.svc.RequestCode(ctx, "foo@bar.com")
	require.NoError(t, err)

	got, err := f.svc.VerifyCode(ctx, "FOO@bar.com ", issued.Code)
	require.NoError(t, err)
	assert.Regexp(t, hex32, got.Token)
	assert.True(t, got.Created)
	assert.Equal(t, "foo@bar.com", got.Email)
	assert.NotZero(t, got.UserID)

	token, found, err := f.store.Get(ctx, "token:foo@bar.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, got.Token, token.Value)
	assert.Equal(t, f.clock.Now().Add(86400*time.Second), token.ExpiresAt)

	_, found, _ = f.store.Get(ctx, "verif:foo@bar.com")
	assert.False(t, found)

	_, err = f.svc.VerifyCode(ctx, "foo@bar.com", issued.Code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerifyCode_CreatesAccountWithUnusablePasswordAndProfile(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	issued, err := f.svc.RequestCode(ctx, "new@user.io")
	require.NoError(t, err)
	got, err := f.svc.VerifyCode(ctx, "new@user.io", issued.Code)
	require.NoError(t, err)

	account, err := f.accounts.FindByEmail(ctx, "new@user.io")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, got.UserID, account.ID)
	assert.Equal(t, "new@user.io", account.Username)
	assert.False(t, account.HasUsablePassword())

	profile, err := f.accounts.FindProfile(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "", profile.Phone)
}

func TestVerifyCode_ExistingAccountNotCreated(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	existing, _, err := f.accounts.CreateWithProfile(ctx, NewAccount{BaseUsername: "ali", Email: "Ali@Example.com", PasswordHash: "$argon2id$x", Phone: "555"})
	require.NoError(t, err)

	issued, err := f.svc.RequestCode(ctx, "ali@example.com")
	require.NoError(t, err)
	got, err := f.svc.VerifyCode(ctx, "ali@example.com", issued.Code)
	require.NoError(t, err)
	assert.False(t, got.Created)
	assert.Equal(t, existing.ID, got.UserID)

	profile, err := f.accounts.FindProfile(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "555", profile.Phone)
}

func TestVerifyCode_WrongOrMissingCode(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	_, err := f.svc.VerifyCode(ctx, "never@issued.io", "123456")
	assert.ErrorIs(t, err, ErrInvalidCode)

	issued, err := f.svc.RequestCode(ctx, "foo@bar.com")
	require.NoError(t, err)
	wrong := "000000"
	if issued.Code == wrong {
		wrong = "000001"
	}
	_, err = f.svc.VerifyCode(ctx, "foo@bar.com", wrong)
	assert.ErrorIs(t, err, ErrInvalidCode)

	n, err := f.accounts.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	state, err := f.svc.State(ctx, "foo@bar.com")
	require.NoError(t, err)
	assert.Equal(t, CodeIssued, state.Status, "a wrong guess does not consume the code")
}

func TestRequestCode_LatestCodeWins(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	var codes []string
	for len(codes) < 2 {
		issued, err := f.svc.RequestCode(ctx, "foo@bar.com")
		require.NoError(t, err)
		if len(codes) == 1 && issued.Code == codes[0] {
			continue
		}
		codes = append(codes, issued.Code)
	}

	_, err := f.svc.VerifyCode(ctx, "foo@bar.com", codes[0])
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = f.svc.VerifyCode(ctx, "foo@bar.com", codes[1])
	assert.NoError(t, err)
}

func TestCodeExpiry(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	issued, err := f.svc.RequestCode(ctx, "foo@bar.com")
	require.NoError(t, err)

	state, err := f.svc.State(ctx, "foo@bar.com")
	require.NoError(t, err)
	assert.Equal(t, CodeIssued, state.Status)
	assert.Equal(t, issued.ExpiresAt, state.ExpiresAt)

	f.clock.Advance(599 * time.Second)
	state, _ = f.svc.State(ctx, "foo@bar.com")
	assert.Equal(t, CodeIssued, state.Status)

	f.clock.Advance(time.Second)
	state, _ = f.svc.State(ctx, "foo@bar.com")
	assert.Equal(t, CodeUnissued, state.Status)
	assert.Equal(t, "unissued", state.Status.String())

	_, err = f.svc.VerifyCode(ctx, "foo@bar.com", issued.Code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerifyCode_ConcurrentOnlyOneSucceeds(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	issued, err := f.svc.RequestCode(ctx, "race@bar.com")
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.VerifyCode(ctx, "race@bar.com", issued.Code)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrInvalidCode)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)

	n, _ := f.accounts.Count(ctx)
	assert.Equal(t, int64(1), n)
}

type failingProfiles struct {
	*MemoryAccountRepository
}

func (failingProfiles) GetOrCreateProfile(context.Context, int64) (*models.Profile, bool, error) {
	return nil, false, &PersistenceError{Op: "create profile", Err: errors.New("db down")}
}

func TestVerifyCode_PersistenceFailureKeepsCode(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()
	svc := NewVerificationService(f.store, failingProfiles{f.accounts}, 0, 0, WithClock(f.clock.Now))

	issued, err := svc.RequestCode(ctx, "foo@bar.com")
	require.NoError(t, err)
	f.clock.Advance(100 * time.Second)

	_, err = svc.VerifyCode(ctx, "foo@bar.com", issued.Code)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)

	e, found, err := f.store.Get(ctx, "verif:foo@bar.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, issued.Code, e.Value)
	assert.Equal(t, issued.ExpiresAt, e.ExpiresAt)

	_, found, _ = f.store.Get(ctx, "token:foo@bar.com")
	assert.False(t, found)
}

// reissuingProfiles simulates a resend arriving while a verification is
// half done, then fails the verification.
type reissuingProfiles struct {
	*MemoryAccountRepository
	svc   *VerificationService
	fresh *IssuedCode
}

func (r *reissuingProfiles) GetOrCreateProfile(ctx context.Context, _ int64) (*models.Profile, bool, error) {
	issued, err := r.svc.RequestCode(ctx, "foo@bar.com")
	if err != nil {
		return nil, false, err
	}
	r.fresh = issued
	return nil, false, &PersistenceError{Op: "create profile", Err: errors.New("db down")}
}

func TestVerifyCode_FailureDoesNotOverwriteNewerCode(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()
	repo := &reissuingProfiles{MemoryAccountRepository: f.accounts}
	svc := NewVerificationService(f.store, repo, 0, 0, WithClock(f.clock.Now))
	repo.svc = svc

	old, err := svc.RequestCode(ctx, "foo@bar.com")
	require.NoError(t, err)

	_, err = svc.VerifyCode(ctx, "foo@bar.com", old.Code)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	require.NotNil(t, repo.fresh)

	e, found, err := f.store.Get(ctx, "verif:foo@bar.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, repo.fresh.Code, e.Value)
	assert.Equal(t, repo.fresh.ExpiresAt, e.ExpiresAt)
}
