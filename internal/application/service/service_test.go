package service

import (
	"context"
	"testing"
	"time"

	"community/internal/appers"
	"community/internal/application/entity"
	"community/pkg/config"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRepo - ручной стаб repo.Repo, поведение задаётся полями
type fakeRepo struct {
	profile        *entity.Profile
	profileErr     error
	prefs          *entity.EmailPreferences
	prefsErr       error
	unsubscribed   []string
	unsubscribeN   int64
	unsubscribeErr error
	healthErr      error
}

func (f *fakeRepo) GetProfile(_ context.Context, _ string) (*entity.Profile, error) {
	return f.profile, f.profileErr
}
func (f *fakeRepo) UpdateProfile(_ context.Context, _ string, _ *entity.ProfilePatch) error {
	return nil
}
func (f *fakeRepo) DeleteProfile(_ context.Context, _ string) error { return nil }
func (f *fakeRepo) ListMembers(_ context.Context, _, _ string) ([]*entity.MemberSummary, error) {
	return nil, nil
}
func (f *fakeRepo) GetPreferences(_ context.Context, _ uuid.UUID) (*entity.EmailPreferences, error) {
	return f.prefs, f.prefsErr
}
func (f *fakeRepo) UpdatePreferences(_ context.Context, _ uuid.UUID, _ entity.Subscriptions) error {
	return nil
}
func (f *fakeRepo) UnsubscribeAllByEmail(_ context.Context, email string) (int64, error) {
	f.unsubscribed = append(f.unsubscribed, email)
	return f.unsubscribeN, f.unsubscribeErr
}
func (f *fakeRepo) DeletePreferencesByEmail(_ context.Context, _ string) error { return nil }
func (f *fakeRepo) DeleteExpiredTokens(_ context.Context) (int64, error)       { return 0, nil }
func (f *fakeRepo) CreateEvent(_ context.Context, _ *entity.Event) (bool, error) {
	return true, nil
}
func (f *fakeRepo) UpdateEvent(_ context.Context, _ *entity.Event) error { return nil }
func (f *fakeRepo) DeleteEvent(_ context.Context, _ string) error        { return nil }
func (f *fakeRepo) GetEvents(_ context.Context, _, _ time.Time) ([]*entity.EventResponse, error) {
	return nil, nil
}
func (f *fakeRepo) InsertOutbox(_ context.Context, _ *entity.OutboxEvent) error { return nil }
func (f *fakeRepo) ReserveOutboxBatch(_ context.Context, _ time.Duration, _, _ int) ([]entity.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeRepo) MarkFailedWithBackoff(_ context.Context, _ int, _ time.Time) error { return nil }
func (f *fakeRepo) MarkGaveUp(_ context.Context, _ int) error                         { return nil }
func (f *fakeRepo) HealthCheck(_ context.Context) error                               { return f.healthErr }

// fakeTransactions записывает вызовы, ошибок не возвращает
type fakeTransactions struct {
	deletedUserID    string
	deletedEmail     string
	updatedEventType entity.OutboxEventType
	updatedSubs      entity.Subscriptions
	createEventCalls int
}

func (f *fakeTransactions) CreateEvent(_ context.Context, _ *entity.Event, _ []byte) error {
	f.createEventCalls++
	return nil
}
func (f *fakeTransactions) UpdatePreferences(_ context.Context, _ uuid.UUID, subs entity.Subscriptions, eventType entity.OutboxEventType, _ []byte) error {
	f.updatedSubs = subs
	f.updatedEventType = eventType
	return nil
}
func (f *fakeTransactions) DeleteAccount(_ context.Context, userID, email string, _ uuid.UUID, _ []byte) error {
	f.deletedUserID = userID
	f.deletedEmail = email
	return nil
}
func (f *fakeTransactions) GetOperationsFromOutbox(_ context.Context, _ config.RelayConfig) ([]entity.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeTransactions) MarkSent(_ context.Context, _ int) error { return nil }

func newTestService(r *fakeRepo, tx *fakeTransactions) *ServiceImpl {
	return NewService(r, tx, nil, zap.NewNop().Sugar(), &config.RelayConfig{})
}

func TestDeleteAccount_ConfirmationMismatch(t *testing.T) {
	r := &fakeRepo{profile: &entity.Profile{UserID: "u1", Email: "u1@example.test"}}
	tx := &fakeTransactions{}
	svc := newTestService(r, tx)

	for _, phrase := range []string{"", "delete", "Delete", "DELETE ", "удалить"} {
		err := svc.DeleteAccount(context.Background(), "u1", phrase)
		assert.ErrorIs(t, err, appers.ErrConfirmationMismatch, "phrase=%q", phrase)
	}
	assert.Empty(t, tx.deletedUserID)
}

func TestDeleteAccount_ExactPhrase(t *testing.T) {
	r := &fakeRepo{profile: &entity.Profile{UserID: "u1", Email: "u1@example.test"}}
	tx := &fakeTransactions{}
	svc := newTestService(r, tx)

	err := svc.DeleteAccount(context.Background(), "u1", entity.DeleteConfirmationPhrase)

	require.NoError(t, err)
	assert.Equal(t, "u1", tx.deletedUserID)
	assert.Equal(t, "u1@example.test", tx.deletedEmail)
}

func TestDeleteAccount_ProfileMissing(t *testing.T) {
	r := &fakeRepo{profileErr: appers.ErrProfileNotFound}
	tx := &fakeTransactions{}
	svc := newTestService(r, tx)

	err := svc.DeleteAccount(context.Background(), "ghost", entity.DeleteConfirmationPhrase)

	assert.ErrorIs(t, err, appers.ErrProfileNotFound)
	assert.Empty(t, tx.deletedUserID)
}

func TestGetPreferences_MalformedTokenIsNotFound(t *testing.T) {
	svc := newTestService(&fakeRepo{}, &fakeTransactions{})

	_, err := svc.GetPreferences(context.Background(), "not-a-uuid")

	assert.ErrorIs(t, err, appers.ErrTokenNotFound)
}

func TestGetPreferences_Expired(t *testing.T) {
	token := uuid.Must(uuid.NewV4())
	r := &fakeRepo{prefs: &entity.EmailPreferences{
		Token:     token,
		Email:     "u1@example.test",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}}
	svc := newTestService(r, &fakeTransactions{})

	_, err := svc.GetPreferences(context.Background(), token.String())

	assert.ErrorIs(t, err, appers.ErrTokenExpired)
}

func TestManagePreferences_UnsubscribeAll(t *testing.T) {
	token := uuid.Must(uuid.NewV4())
	r := &fakeRepo{prefs: &entity.EmailPreferences{
		Token:         token,
		Email:         "u1@example.test",
		Subscriptions: entity.Subscriptions{Newsletters: true, Events: true, Announcements: true},
		ExpiresAt:     time.Now().UTC().Add(time.Hour),
	}}
	tx := &fakeTransactions{}
	svc := newTestService(r, tx)

	got, err := svc.ManagePreferences(context.Background(), token.String(), entity.ManagePreferencesRequest{UnsubscribeAll: true})

	require.NoError(t, err)
	assert.Equal(t, entity.Subscriptions{}, got.Subscriptions)
	assert.Equal(t, entity.Unsubscribed, tx.updatedEventType)
	assert.Equal(t, entity.Subscriptions{}, tx.updatedSubs)
}

func TestManagePreferences_SingleCategoryUpdate(t *testing.T) {
	token := uuid.Must(uuid.NewV4())
	r := &fakeRepo{prefs: &entity.EmailPreferences{
		Token:         token,
		Email:         "u1@example.test",
		Subscriptions: entity.Subscriptions{Newsletters: true, Events: true, Announcements: true},
		ExpiresAt:     time.Now().UTC().Add(time.Hour),
	}}
	tx := &fakeTransactions{}
	svc := newTestService(r, tx)

	req := entity.ManagePreferencesRequest{
		Subscriptions: &entity.Subscriptions{Newsletters: true, Events: false, Announcements: true},
	}
	got, err := svc.ManagePreferences(context.Background(), token.String(), req)

	require.NoError(t, err)
	assert.False(t, got.Subscriptions.Events)
	assert.True(t, got.Subscriptions.Newsletters)
	assert.Equal(t, entity.PreferencesUpdated, tx.updatedEventType)
}

func TestHandleBouncedEmail(t *testing.T) {
	r := &fakeRepo{unsubscribeN: 2}
	svc := newTestService(r, &fakeTransactions{})

	err := svc.HandleBouncedEmail(context.Background(), []byte(`{"email":"dead@example.test","reason":"mailbox full"}`))

	require.NoError(t, err)
	assert.Equal(t, []string{"dead@example.test"}, r.unsubscribed)
}

func TestHandleBouncedEmail_Invalid(t *testing.T) {
	svc := newTestService(&fakeRepo{}, &fakeTransactions{})

	assert.Error(t, svc.HandleBouncedEmail(context.Background(), []byte(`not json`)))
	assert.Error(t, svc.HandleBouncedEmail(context.Background(), []byte(`{"reason":"no email"}`)))
}
