package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
	"github.com/aussiebroadwan/fieldops/internal/portal/identity"
	"github.com/aussiebroadwan/fieldops/internal/portal/store"
	"github.com/aussiebroadwan/fieldops/internal/portal/store/drivers/sqlite"
	"github.com/aussiebroadwan/fieldops/pkg/cryptox"
	"github.com/aussiebroadwan/fieldops/pkg/slogx"
)

var errInjected = errors.New("injected failure")

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seedRoles loads the built-in catalog and returns role ids by name.
func seedRoles(t *testing.T, st store.Store) map[string]string {
	t.Helper()
	ctx := context.Background()

	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	_, err = (&SeedService{Store: st}).Seed(ctx, catalog)
	require.NoError(t, err)

	roles, err := st.Roles().ListRoles(ctx)
	require.NoError(t, err)

	ids := make(map[string]string, len(roles))
	for _, r := range roles {
		ids[r.Name] = r.ID
	}
	return ids
}

func invite(t *testing.T, st store.Store, email, role string) domain.Invitation {
	t.Helper()
	inv, err := (&InviteService{Store: st}).Create(context.Background(), InviteRequest{
		Email: email,
		Role:  role,
	}, "test")
	require.NoError(t, err)
	return inv
}

type fakeProvider struct {
	identities map[string]domain.Identity
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.test/authorize?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (domain.Identity, error) {
	ident, ok := p.identities[code]
	if !ok {
		return domain.Identity{}, identity.ErrExchange
	}
	return ident, nil
}

// recordingSessions wraps SessionService to observe what the claim did.
type recordingSessions struct {
	*SessionService
	established []domain.Session
	tokens      []string
	revoked     []string
}

func (r *recordingSessions) Establish(ctx context.Context, ident domain.Identity) (domain.Session, string, error) {
	sess, token, err := r.SessionService.Establish(ctx, ident)
	if err == nil {
		r.established = append(r.established, sess)
		r.tokens = append(r.tokens, token)
	}
	return sess, token, err
}

func (r *recordingSessions) Revoke(ctx context.Context, id string) error {
	r.revoked = append(r.revoked, id)
	return r.SessionService.Revoke(ctx, id)
}

// lastSession reloads the most recently established session from the store.
func (r *recordingSessions) lastSession(t *testing.T) domain.Session {
	t.Helper()
	require.NotEmpty(t, r.tokens)
	sess, err := r.Store.Sessions().GetSessionByTokenHash(context.Background(),
		cryptox.FingerprintToken(r.tokens[len(r.tokens)-1]))
	require.NoError(t, err)
	return sess
}

type claimFixture struct {
	store    store.Store
	provider *fakeProvider
	sessions *recordingSessions
	svc      *ClaimService
}

func newClaimFixture(t *testing.T, st store.Store) *claimFixture {
	t.Helper()

	resolver, err := NewRedirectResolver("https://portal.test", []string{"portal.example.com"}, false)
	require.NoError(t, err)

	f := &claimFixture{
		store:    st,
		provider: &fakeProvider{identities: map[string]domain.Identity{}},
		sessions: &recordingSessions{SessionService: &SessionService{Store: st, TTL: time.Hour}},
	}
	f.svc = &ClaimService{
		Store:     st,
		Provider:  f.provider,
		Sessions:  f.sessions,
		Redirects: resolver,
	}
	return f
}

func (f *claimFixture) callback(t *testing.T, code, subject, email, next string) (ClaimResult, error) {
	t.Helper()
	f.provider.identities[code] = domain.Identity{SubjectID: subject, Email: email}
	return f.svc.Claim(context.Background(), CallbackRequest{Code: code, Next: next})
}

// faultyStore injects failures into selected repository calls, both on the
// store itself and inside transactions.
type faultyStore struct {
	store.Store

	upsertErr       error
	deleteErr       error
	staleInvitation *domain.Invitation
}

func (f *faultyStore) Profiles() store.Profiles {
	return &faultyProfiles{Profiles: f.Store.Profiles(), f: f}
}

func (f *faultyStore) Invitations() store.Invitations {
	return &faultyInvitations{Invitations: f.Store.Invitations(), f: f}
}

func (f *faultyStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return f.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(&faultyTx{baseTx: tx, f: f})
	})
}

// baseTx keeps the embedded field from being named Tx, which would shadow
// the Tx method of store.Tx.
type baseTx = store.Tx

type faultyTx struct {
	baseTx
	f *faultyStore
}

func (t *faultyTx) Profiles() store.Profiles {
	return &faultyProfiles{Profiles: t.baseTx.Profiles(), f: t.f}
}

func (t *faultyTx) Invitations() store.Invitations {
	return &faultyInvitations{Invitations: t.baseTx.Invitations(), f: t.f}
}

type faultyProfiles struct {
	store.Profiles
	f *faultyStore
}

func (p *faultyProfiles) UpsertProfile(ctx context.Context, profile domain.Profile) error {
	if p.f.upsertErr != nil {
		return p.f.upsertErr
	}
	return p.Profiles.UpsertProfile(ctx, profile)
}

type faultyInvitations struct {
	store.Invitations
	f *faultyStore
}

func (i *faultyInvitations) FindInvitationByEmail(ctx context.Context, email string) (domain.Invitation, error) {
	if i.f.staleInvitation != nil {
		return *i.f.staleInvitation, nil
	}
	return i.Invitations.FindInvitationByEmail(ctx, email)
}

func (i *faultyInvitations) DeleteInvitation(ctx context.Context, id, email string) error {
	if i.f.deleteErr != nil {
		return i.f.deleteErr
	}
	return i.Invitations.DeleteInvitation(ctx, id, email)
}

func identityFor(subject, email string) domain.Identity {
	return domain.Identity{SubjectID: subject, Email: email}
}

func discardLogger() *slog.Logger {
	return slogx.Discard()
}

// addProfile writes an active, onboarded profile straight to the store.
func addProfile(t *testing.T, st store.Store, id, email string, roleID *string) domain.Profile {
	t.Helper()
	now := time.Now().UTC()
	p := domain.Profile{
		ID:                  id,
		Email:               email,
		DisplayName:         email,
		RoleID:              roleID,
		IsActive:            true,
		OnboardingCompleted: true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	require.NoError(t, st.Profiles().UpsertProfile(context.Background(), p))
	return p
}

func ptr[T any](v T) *T { return &v }
