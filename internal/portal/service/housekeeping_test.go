package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
	"github.com/aussiebroadwan/fieldops/internal/portal/store"
	"github.com/aussiebroadwan/fieldops/internal/portal/telemetry"
)

func TestHousekeeping_RunOnce(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	old := time.Now().UTC().Add(-72 * time.Hour)
	sessions := &SessionService{Store: st, TTL: time.Hour, Now: func() time.Time { return old }}
	expired, _, err := sessions.Establish(ctx, domain.Identity{SubjectID: "u1", Email: "a@x.com"})
	require.NoError(t, err)

	live, _, err := (&SessionService{Store: st}).Establish(ctx, domain.Identity{SubjectID: "u2", Email: "b@x.com"})
	require.NoError(t, err)

	claimed := invite(t, st, "a@x.com", "")
	pending := invite(t, st, "c@x.com", "")
	addProfile(t, st, "u1", "A@x.com", nil)

	metrics := telemetry.NewMetrics()
	report := NewHousekeepingService(st, discardLogger(), metrics, 0).RunOnce(ctx)
	require.EqualValues(t, 1, report.Sessions)
	require.EqualValues(t, 1, report.Invitations)

	_, err = st.Invitations().GetInvitationByID(ctx, claimed.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Invitations().GetInvitationByID(ctx, pending.ID)
	require.NoError(t, err)

	_, err = st.Sessions().GetSessionByTokenHash(ctx, expired.TokenHash)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Sessions().GetSessionByTokenHash(ctx, live.TokenHash)
	require.NoError(t, err)
}

func TestHousekeeping_StartStop(t *testing.T) {
	st := newTestStore(t)
	svc := NewHousekeepingService(st, discardLogger(), nil, time.Hour)
	require.Equal(t, 24*time.Hour, svc.SessionRetention)

	svc.Start()
	svc.Stop()
}
