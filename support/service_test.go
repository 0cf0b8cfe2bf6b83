package support

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsdiff/supportbot/dialog"
	"github.com/skillsdiff/supportbot/journal"
)

const testGroupID int64 = -100500

type sentMessage struct {
	chatID int64
	text   string
}

// fakeMessenger records sends and can be told to fail for specific chats.
type fakeMessenger struct {
	sent    []sentMessage
	failFor map[int64]error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{failFor: make(map[int64]error)}
}

func (f *fakeMessenger) Send(chatID int64, what interface{}, _ ...interface{}) error {
	if err, ok := f.failFor[chatID]; ok {
		return err
	}
	text, _ := what.(string)
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeMessenger) textsFor(chatID int64) []string {
	var out []string
	for _, m := range f.sent {
		if m.chatID == chatID {
			out = append(out, m.text)
		}
	}
	return out
}

type recordedEvent struct {
	kind, userID, adminID string
}

type fakeRecorder struct {
	events []recordedEvent
}

func (f *fakeRecorder) Record(_ context.Context, ev journal.Event) error {
	f.events = append(f.events, recordedEvent{kind: ev.Kind, userID: ev.UserID, adminID: ev.AdminID})
	return nil
}

func newService(msgr Messenger, rec journal.Recorder) *Service {
	return NewService(dialog.NewManager(), msgr, rec, testGroupID, Keyboards{})
}

func TestClaimHappyPath(t *testing.T) {
	msgr := newFakeMessenger()
	rec := &fakeRecorder{}
	svc := newService(msgr, rec)

	status, err := svc.Claim(context.Background(), 200, 100)
	require.NoError(t, err)
	assert.Equal(t, ClaimOK, status)

	assert.True(t, svc.Dialogs().IsUserInDialog("100"))
	assert.True(t, svc.Dialogs().IsAdminInDialog("200"))

	assert.Equal(t, []string{TxtAdminJoined}, msgr.textsFor(100))
	assert.Equal(t, []string{TxtDialogStarted}, msgr.textsFor(200))

	require.Len(t, rec.events, 1)
	assert.Equal(t, recordedEvent{kind: journal.KindCreated, userID: "100", adminID: "200"}, rec.events[0])
}

func TestClaimAdminBusy(t *testing.T) {
	msgr := newFakeMessenger()
	svc := newService(msgr, nil)

	status, err := svc.Claim(context.Background(), 200, 100)
	require.NoError(t, err)
	require.Equal(t, ClaimOK, status)

	status, err = svc.Claim(context.Background(), 200, 101)
	require.NoError(t, err)
	assert.Equal(t, ClaimAdminBusy, status)
	assert.False(t, svc.Dialogs().IsUserInDialog("101"))
}

func TestClaimUserBusy(t *testing.T) {
	msgr := newFakeMessenger()
	svc := newService(msgr, nil)

	status, err := svc.Claim(context.Background(), 200, 100)
	require.NoError(t, err)
	require.Equal(t, ClaimOK, status)

	status, err = svc.Claim(context.Background(), 300, 100)
	require.NoError(t, err)
	assert.Equal(t, ClaimUserBusy, status)

	d, found := svc.Dialogs().ByUser("100")
	require.True(t, found)
	assert.Equal(t, "200", d.AdminID)
}

func TestClaimRollbackOnUserNotifyFailure(t *testing.T) {
	msgr := newFakeMessenger()
	msgr.failFor[100] = errors.New("forbidden: bot was blocked by the user")
	svc := newService(msgr, nil)

	status, err := svc.Claim(context.Background(), 200, 100)
	require.Error(t, err)
	assert.Equal(t, ClaimNotifyFailed, status)

	// Rollback: both sides are free again.
	assert.False(t, svc.Dialogs().IsUserInDialog("100"))
	assert.False(t, svc.Dialogs().IsAdminInDialog("200"))
	assert.Empty(t, msgr.textsFor(200))
}

func TestClaimRollbackOnAdminNotifyFailure(t *testing.T) {
	msgr := newFakeMessenger()
	msgr.failFor[200] = errors.New("forbidden: bot was blocked by the user")
	svc := newService(msgr, nil)

	status, err := svc.Claim(context.Background(), 200, 100)
	require.Error(t, err)
	assert.Equal(t, ClaimNotifyFailed, status)

	assert.False(t, svc.Dialogs().IsUserInDialog("100"))
	// The user was told the admin joined before the rollback happened;
	// they remain claimable by the next admin regardless.
	assert.Equal(t, []string{TxtAdminJoined}, msgr.textsFor(100))
}

func TestRequestSupportBroadcast(t *testing.T) {
	msgr := newFakeMessenger()
	svc := newService(msgr, nil)

	err := svc.RequestSupport(context.Background(), 100, "someone", nil)
	require.NoError(t, err)
	require.Len(t, msgr.sent, 1)
	assert.Equal(t, testGroupID, msgr.sent[0].chatID)
	assert.Equal(t, "@someone (ID: 100) запрашивает техподдержку", msgr.sent[0].text)
}

func TestCloseForRemovesDialogAndNotifies(t *testing.T) {
	msgr := newFakeMessenger()
	rec := &fakeRecorder{}
	svc := newService(msgr, rec)

	_, err := svc.Claim(context.Background(), 200, 100)
	require.NoError(t, err)

	closed, err := svc.CloseFor(context.Background(), 200, 100)
	require.NoError(t, err)
	assert.True(t, closed)

	assert.False(t, svc.Dialogs().IsUserInDialog("100"))
	assert.Contains(t, msgr.textsFor(100), TxtDialogClosed)
	assert.Equal(t, journal.KindClosedByAdmin, rec.events[len(rec.events)-1].kind)
}

func TestCloseForUnknownDialog(t *testing.T) {
	svc := newService(newFakeMessenger(), nil)

	closed, err := svc.CloseFor(context.Background(), 200, 100)
	require.NoError(t, err)
	assert.False(t, closed)
}

func TestCloseForNotifyFailureStillCloses(t *testing.T) {
	msgr := newFakeMessenger()
	svc := newService(msgr, nil)

	_, err := svc.Claim(context.Background(), 200, 100)
	require.NoError(t, err)

	msgr.failFor[100] = errors.New("forbidden")
	closed, err := svc.CloseFor(context.Background(), 200, 100)
	assert.Error(t, err)
	assert.True(t, closed)
	assert.False(t, svc.Dialogs().IsUserInDialog("100"))
}

func TestCloseOwn(t *testing.T) {
	msgr := newFakeMessenger()
	svc := newService(msgr, nil)

	_, err := svc.Claim(context.Background(), 200, 100)
	require.NoError(t, err)

	closed, err := svc.CloseOwn(context.Background(), 200)
	require.NoError(t, err)
	assert.True(t, closed)

	assert.False(t, svc.Dialogs().IsAdminInDialog("200"))
	assert.Contains(t, msgr.textsFor(100), TxtDialogFinished)
}

func TestCloseOwnWithoutDialog(t *testing.T) {
	svc := newService(newFakeMessenger(), nil)

	closed, err := svc.CloseOwn(context.Background(), 200)
	require.NoError(t, err)
	assert.False(t, closed)
}

func TestCloseOwnNotifyFailureKeepsDialog(t *testing.T) {
	msgr := newFakeMessenger()
	svc := newService(msgr, nil)

	_, err := svc.Claim(context.Background(), 200, 100)
	require.NoError(t, err)

	msgr.failFor[100] = errors.New("forbidden")
	closed, err := svc.CloseOwn(context.Background(), 200)
	assert.Error(t, err)
	assert.True(t, closed)
	assert.True(t, svc.Dialogs().IsUserInDialog("100"))
}

func TestLeave(t *testing.T) {
	msgr := newFakeMessenger()
	rec := &fakeRecorder{}
	svc := newService(msgr, rec)

	_, err := svc.Claim(context.Background(), 200, 100)
	require.NoError(t, err)

	left, err := svc.Leave(context.Background(), 100, "someone")
	require.NoError(t, err)
	assert.True(t, left)

	assert.False(t, svc.Dialogs().IsUserInDialog("100"))
	assert.Contains(t, msgr.textsFor(testGroupID), "Пользователь @someone покинул диалог с техподдержкой.")
	assert.Equal(t, journal.KindClosedByUser, rec.events[len(rec.events)-1].kind)
}

func TestLeaveWithoutDialog(t *testing.T) {
	svc := newService(newFakeMessenger(), nil)

	left, err := svc.Leave(context.Background(), 100, "someone")
	require.NoError(t, err)
	assert.False(t, left)
}

func TestLeaveGroupNoticeFailureIsNotFatal(t *testing.T) {
	msgr := newFakeMessenger()
	msgr.failFor[testGroupID] = errors.New("chat not found")
	svc := newService(msgr, nil)

	_, err := svc.Claim(context.Background(), 200, 100)
	require.NoError(t, err)

	left, err := svc.Leave(context.Background(), 100, "someone")
	require.NoError(t, err)
	assert.True(t, left)
	assert.False(t, svc.Dialogs().IsUserInDialog("100"))
}

func TestRelayUserToAdminTagged(t *testing.T) {
	msgr := newFakeMessenger()
	svc := newService(msgr, nil)

	_, err := svc.Claim(context.Background(), 200, 100)
	require.NoError(t, err)

	outcome, err := svc.Relay(context.Background(), 100, "someone", "мой вопрос")
	require.NoError(t, err)
	assert.Equal(t, RelayDelivered, outcome)

	texts := msgr.textsFor(200)
	require.NotEmpty(t, texts)
	assert.Equal(t, "От пользователя @someone:\nмой вопрос", texts[len(texts)-1])
}

func TestRelayUserWithoutUsernameFallsBackToID(t *testing.T) {
	msgr := newFakeMessenger()
	svc := newService(msgr, nil)

	_, err := svc.Claim(context.Background(), 200, 100)
	require.NoError(t, err)

	outcome, err := svc.Relay(context.Background(), 100, "", "вопрос")
	require.NoError(t, err)
	assert.Equal(t, RelayDelivered, outcome)

	texts := msgr.textsFor(200)
	assert.Equal(t, "От пользователя 100:\nвопрос", texts[len(texts)-1])
}

func TestRelayAdminToUserUnmarked(t *testing.T) {
	msgr := newFakeMessenger()
	svc := newService(msgr, nil)

	_, err := svc.Claim(context.Background(), 200, 100)
	require.NoError(t, err)

	outcome, err := svc.Relay(context.Background(), 200, "helper", "ответ")
	require.NoError(t, err)
	assert.Equal(t, RelayDelivered, outcome)

	texts := msgr.textsFor(100)
	assert.Equal(t, "ответ", texts[len(texts)-1])
}

func TestRelayNonParticipantIgnored(t *testing.T) {
	msgr := newFakeMessenger()
	svc := newService(msgr, nil)

	outcome, err := svc.Relay(context.Background(), 999, "nobody", "привет")
	require.NoError(t, err)
	assert.Equal(t, RelayIgnored, outcome)
	assert.Empty(t, msgr.sent)
}

func TestRelayFailureClosesDialog(t *testing.T) {
	for _, tc := range []struct {
		name     string
		senderID int64
		failFor  int64
	}{
		{name: "user to admin", senderID: 100, failFor: 200},
		{name: "admin to user", senderID: 200, failFor: 100},
	} {
		t.Run(tc.name, func(t *testing.T) {
			msgr := newFakeMessenger()
			rec := &fakeRecorder{}
			svc := newService(msgr, rec)

			_, err := svc.Claim(context.Background(), 200, 100)
			require.NoError(t, err)

			msgr.failFor[tc.failFor] = fmt.Errorf("telegram: forbidden (403)")
			outcome, err := svc.Relay(context.Background(), tc.senderID, "someone", "текст")
			require.Error(t, err)
			assert.Equal(t, RelayFailed, outcome)

			assert.False(t, svc.Dialogs().IsUserInDialog("100"))
			assert.False(t, svc.Dialogs().IsAdminInDialog("200"))
			assert.Equal(t, journal.KindRelayFailed, rec.events[len(rec.events)-1].kind)
		})
	}
}

func TestRecordStale(t *testing.T) {
	rec := &fakeRecorder{}
	svc := newService(newFakeMessenger(), rec)

	svc.RecordStale([]dialog.Dialog{
		{UserID: "100", AdminID: "200"},
		{UserID: "101", AdminID: "201"},
	})

	require.Len(t, rec.events, 2)
	assert.Equal(t, journal.KindStale, rec.events[0].kind)
	assert.Equal(t, "101", rec.events[1].userID)
}
