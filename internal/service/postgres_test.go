package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdemena/lists-sharing-sub000/internal/auth"
	"github.com/mdemena/lists-sharing-sub000/internal/testutil"
)

func TestShareAndClaim_Postgres(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := New(Deps{
		Store:    database,
		Tokens:   auth.NewTokenManager("test-secret", time.Hour),
		Denylist: auth.NewMemoryDenylist(),
		Mailer:   &fakeMailer{},
	}, Options{MaxShareRecipients: 10})

	owner := testutil.CreateTestUser(t, database, "ana@example.com", "Ana")
	guest := testutil.CreateTestUser(t, database, "bob@example.com", "Bob")
	list := testutil.CreateTestList(t, database, owner, "Birthday")

	name := "Book"
	item, err := svc.Items.CreateItem(ctx, owner, list.ID, ItemInput{Name: &name})
	require.NoError(t, err)

	_, err = svc.Shares.ShareList(ctx, owner, ShareRequest{ListID: list.ID, RecipientEmails: []string{guest.Email}})
	require.NoError(t, err)

	visit, err := svc.Shares.RegisterVisit(ctx, guest, list.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", visit.SharedByName)

	claimed, err := svc.Items.SetAdjudicated(ctx, guest, list.ID, item.ID, true)
	require.NoError(t, err)
	assert.True(t, claimed.IsClaimedBy(guest.ID))

	ownerView, err := svc.Items.GetItem(ctx, owner, list.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, ownerView.IsAdjudicated)
	assert.Nil(t, ownerView.AdjudicatedBy)

	err = svc.Lists.DeleteList(ctx, owner, list.ID)
	assert.ErrorIs(t, err, ErrNotAllowed)
}
