// The `_test` suffix creates a "black box" test package.
// This means the test code lives outside the `stream` package and can only
// access its exported identifiers. This is the preferred approach for
// testing the public API of a package.
package stream_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docqa/backend/internal/answer"
	"docqa/backend/internal/answer/mocks"
	app_errors "docqa/backend/internal/errors"
	"docqa/backend/internal/model"
	"docqa/backend/internal/stream"
)

const welcomeText = "Hello! Ask me anything about the uploaded documents."

// setupStore is a test helper that creates a store backed by a mocked
// answer provider. It keeps the test cases focused on the behavior being
// tested instead of repetitive wiring.
func setupStore(t *testing.T) (*stream.Store, *mocks.MockProvider) {
	provider := mocks.NewMockProvider(t)
	store := stream.NewStore(provider, welcomeText)
	return store, provider
}

// TestStore_WelcomeEntry verifies that a new session is seeded with a
// single synthetic assistant greeting that is not a reveal target.
func TestStore_WelcomeEntry(t *testing.T) {
	store, _ := setupStore(t)

	snap := store.Snapshot()
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, model.OriginAssistant, snap.Entries[0].Origin)
	assert.Equal(t, welcomeText, snap.Entries[0].Text)
	assert.False(t, snap.Entries[0].Failed)
	assert.Empty(t, snap.ActiveRevealID)
	assert.False(t, snap.Pending)
}

// TestStore_Submit_BlankInput verifies that blank input is a silent
// no-op: no entry is created, no request is sent, and the specific
// sentinel error is returned so callers can tell it apart from a failure.
func TestStore_Submit_BlankInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t "} {
		store, _ := setupStore(t)

		entry, err := store.Submit(context.Background(), input)

		assert.ErrorIs(t, err, app_errors.ErrEmptyInput)
		assert.Nil(t, entry)
		assert.Len(t, store.Snapshot().Entries, 1, "only the welcome entry should remain")
		assert.False(t, store.Pending())
	}
}

// TestStore_Submit_Success is the happy path: the user entry is appended
// (trimmed) before the answer arrives, and the assistant entry becomes
// the new reveal target with its sources attached.
func TestStore_Submit_Success(t *testing.T) {
	store, provider := setupStore(t)

	provider.On("Ask", mock.Anything, "capital of France?").
		Run(func(args mock.Arguments) {
			// While the provider is being consulted, the user entry must
			// already be in the history and the session must be pending.
			snap := store.Snapshot()
			require.Len(t, snap.Entries, 2)
			assert.Equal(t, model.OriginUser, snap.Entries[1].Origin)
			assert.Equal(t, "capital of France?", snap.Entries[1].Text)
			assert.True(t, snap.Pending)
		}).
		Return(&answer.Answer{Text: "Paris", Sources: []string{"doc1"}}, nil).Once()

	// Surrounding whitespace must be trimmed before anything else happens.
	entry, err := store.Submit(context.Background(), "  capital of France?  ")
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, model.OriginAssistant, entry.Origin)
	assert.Equal(t, "Paris", entry.Text)
	assert.Equal(t, []string{"doc1"}, entry.Sources)
	assert.False(t, entry.Failed)

	snap := store.Snapshot()
	require.Len(t, snap.Entries, 3)
	assert.Equal(t, entry.ID, snap.ActiveRevealID, "the successful answer becomes the reveal target")
	assert.False(t, snap.Pending)
	assert.Empty(t, snap.LastError)
}

// TestStore_Submit_EmptyAnswer verifies the canned fallback: a service
// response with no usable text must not produce an empty assistant entry.
func TestStore_Submit_EmptyAnswer(t *testing.T) {
	store, provider := setupStore(t)
	provider.On("Ask", mock.Anything, "anything?").
		Return(&answer.Answer{Text: "   "}, nil).Once()

	entry, err := store.Submit(context.Background(), "anything?")
	require.NoError(t, err)

	assert.Contains(t, entry.Text, "couldn't find an answer")
	assert.False(t, entry.Failed)
}

// TestStore_Submit_Failure verifies the failure conversion: the error is
// caught at the store boundary, turned into a failed apology entry plus a
// banner message, and never propagated to the caller. Failure entries are
// deliberately NOT made the reveal target, so error text appears
// instantly rather than animated.
func TestStore_Submit_Failure(t *testing.T) {
	store, provider := setupStore(t)

	provider.On("Ask", mock.Anything, "where is it?").
		Return(nil, &answer.Error{Category: answer.CategoryNotFound, Status: 404}).Once()

	entry, err := store.Submit(context.Background(), "where is it?")
	require.NoError(t, err, "provider failures are converted, not propagated")
	require.NotNil(t, entry)

	assert.True(t, entry.Failed)
	assert.Equal(t, model.OriginAssistant, entry.Origin)
	assert.Empty(t, entry.Sources)

	snap := store.Snapshot()
	assert.False(t, snap.Pending)
	assert.Contains(t, snap.LastError, "could not be found")
	assert.Empty(t, snap.ActiveRevealID, "failed entries are never the reveal target")

	// The session must remain usable after a failure.
	provider.On("Ask", mock.Anything, "retry?").
		Return(&answer.Answer{Text: "Better."}, nil).Once()
	retry, err := store.Submit(context.Background(), "retry?")
	require.NoError(t, err)
	assert.False(t, retry.Failed)
	assert.Empty(t, store.LastError(), "a new submit clears the previous error")
}

// TestStore_Submit_Concurrent verifies the single-flight guard: a second
// submission while one is pending must fail with the dedicated sentinel
// error and leave the stream state completely unchanged.
func TestStore_Submit_Concurrent(t *testing.T) {
	store, provider := setupStore(t)

	release := make(chan struct{})
	provider.On("Ask", mock.Anything, "slow question").
		Run(func(args mock.Arguments) { <-release }).
		Return(&answer.Answer{Text: "done"}, nil).Once()

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, err := store.Submit(context.Background(), "slow question")
		assert.NoError(t, err)
	}()

	// Wait until the first submission is genuinely in flight.
	require.Eventually(t, store.Pending, time.Second, time.Millisecond)
	entriesBefore := len(store.Snapshot().Entries)

	entry, err := store.Submit(context.Background(), "second question")
	assert.ErrorIs(t, err, app_errors.ErrConcurrentSubmit)
	assert.Nil(t, entry)
	assert.Len(t, store.Snapshot().Entries, entriesBefore, "a rejected submit must not touch the history")

	close(release)
	<-firstDone
	assert.False(t, store.Pending())
}

// TestStore_MonotonicIDs verifies that entry ids increase strictly in
// creation order, which is what lets the client treat them as opaque but
// orderable. Enough entries are created to push the ids into double
// digits, where string comparison would get the order wrong ("10" < "9").
func TestStore_MonotonicIDs(t *testing.T) {
	store, provider := setupStore(t)
	provider.On("Ask", mock.Anything, mock.Anything).
		Return(&answer.Answer{Text: "ok"}, nil).Times(5)

	for i := 0; i < 5; i++ {
		_, err := store.Submit(context.Background(), "question "+strconv.Itoa(i))
		require.NoError(t, err)
	}

	// Welcome entry plus a user/assistant pair per submission.
	snap := store.Snapshot()
	require.Len(t, snap.Entries, 11)
	for i := 1; i < len(snap.Entries); i++ {
		prev, err := strconv.ParseInt(snap.Entries[i-1].ID, 10, 64)
		require.NoError(t, err)
		next, err := strconv.ParseInt(snap.Entries[i].ID, 10, 64)
		require.NoError(t, err)
		assert.Less(t, prev, next)
	}
}

// TestStore_DismissError verifies that dismissing the banner clears the
// last error and nothing else.
func TestStore_DismissError(t *testing.T) {
	store, provider := setupStore(t)
	provider.On("Ask", mock.Anything, "boom").
		Return(nil, &answer.Error{Category: answer.CategoryServerError, Status: 500}).Once()

	_, err := store.Submit(context.Background(), "boom")
	require.NoError(t, err)
	require.NotEmpty(t, store.LastError())
	entriesBefore := len(store.Snapshot().Entries)

	store.DismissError()

	assert.Empty(t, store.LastError())
	assert.Len(t, store.Snapshot().Entries, entriesBefore)
}
